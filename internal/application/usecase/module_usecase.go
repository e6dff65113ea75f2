package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ access.FeatureChecker = (*ModuleService)(nil)

// ModuleService verifica qué módulos SaaS tiene activos una empresa.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	companyRepo repository.CompanyRepository
	loc         *time.Location
	now         func() time.Time
}

// NewModuleService construye el servicio de módulos. loc es la zona en la que se evalúa la
// vigencia (nil = UTC); now nil usa time.Now.
func NewModuleService(companyRepo repository.CompanyRepository, loc *time.Location, now func() time.Time) *ModuleService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ModuleService{companyRepo: companyRepo, loc: loc, now: now}
}

// Today día natural actual en la zona configurada.
func (s *ModuleService) Today() time.Time {
	return entity.CalendarDay(s.now().In(s.loc), s.loc)
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si la empresa no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	m, err := s.companyRepo.GetModule(ctx, companyID, moduleName)
	if err != nil {
		return false, fmt.Errorf("module: consultar %s de %s: %w", moduleName, companyID, err)
	}
	return m.ActiveOn(s.Today()), nil
}
