package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// CompanyUseCase consulta empresas y administra sus módulos contratados.
type CompanyUseCase struct {
	repo    repository.CompanyRepository
	modules *ModuleService
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, modules *ModuleService) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, modules: modules}
}

// GetByID obtiene una empresa. Fuera del administrador solo se ve la propia.
func (uc *CompanyUseCase) GetByID(ctx context.Context, p entity.Principal, id string) (*dto.CompanyResponse, error) {
	if err := canRead(p, id); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Modules lista los módulos de la empresa con su vigencia evaluada hoy.
func (uc *CompanyUseCase) Modules(ctx context.Context, p entity.Principal, companyID string) (*dto.ModuleListResponse, error) {
	if err := canRead(p, companyID); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListModules(ctx, companyID)
	if err != nil {
		return nil, err
	}
	today := uc.modules.Today()
	items := make([]dto.ModuleResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *entityToModuleResponse(m, today))
	}
	return &dto.ModuleListResponse{CompanyID: companyID, Items: items}, nil
}

// SetModule activa o desactiva un módulo con su ventana de vigencia. Solo administrador.
func (uc *CompanyUseCase) SetModule(ctx context.Context, p entity.Principal, companyID, moduleName string, in dto.SetModuleRequest) (*dto.ModuleResponse, error) {
	if !p.IsAdmin() {
		return nil, fmt.Errorf("%w: solo el administrador gestiona módulos", domain.ErrForbidden)
	}
	if !entity.ValidModule(moduleName) {
		return nil, fmt.Errorf("%w: módulo %q", domain.ErrInvalidInput, moduleName)
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	activated, err := parseOptionalDate(in.ActivatedOn)
	if err != nil {
		return nil, err
	}
	expires, err := parseOptionalDate(in.ExpiresOn)
	if err != nil {
		return nil, err
	}
	if activated != nil && expires != nil && expires.Before(*activated) {
		return nil, fmt.Errorf("%w: expires_on anterior a activated_on", domain.ErrInvalidInput)
	}

	company, err := uc.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	m := &entity.CompanyModule{
		CompanyID:   companyID,
		ModuleName:  moduleName,
		IsActive:    *in.IsActive,
		ActivatedOn: activated,
		ExpiresOn:   expires,
		UpdatedAt:   time.Now(),
	}
	if err := uc.repo.UpsertModule(ctx, m); err != nil {
		return nil, err
	}
	return entityToModuleResponse(m, uc.modules.Today()), nil
}

func canRead(p entity.Principal, companyID string) error {
	if p.IsAdmin() {
		return nil
	}
	if !p.HasTenant() {
		return domain.ErrMissingTenant
	}
	if p.TenantID != companyID {
		return fmt.Errorf("%w: empresa ajena", domain.ErrForbidden)
	}
	return nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func entityToModuleResponse(m *entity.CompanyModule, today time.Time) *dto.ModuleResponse {
	return &dto.ModuleResponse{
		CompanyID:   m.CompanyID,
		ModuleName:  m.ModuleName,
		IsActive:    m.IsActive,
		ActivatedOn: formatOptionalDate(m.ActivatedOn),
		ExpiresOn:   formatOptionalDate(m.ExpiresOn),
		ActiveToday: m.ActiveOn(today),
		UpdatedAt:   m.UpdatedAt,
	}
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		CIF:       c.CIF,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
