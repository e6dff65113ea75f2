package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL (empresas y company_modules).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// GetByID obtiene una empresa por ID. nil, nil si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	const query = `
		SELECT id::text, nombre, COALESCE(cif, ''), COALESCE(direccion, ''), COALESCE(telefono, ''),
		       COALESCE(email, ''), estado, created_at, updated_at
		FROM empresas WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.CIF, &c.Address, &c.Phone, &c.Email, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPgError(fmt.Errorf("get empresa: %w", err))
	}
	return &c, nil
}

// GetModule devuelve la fila de activación del módulo o nil, nil si no existe.
func (r *CompanyRepo) GetModule(ctx context.Context, companyID, moduleName string) (*entity.CompanyModule, error) {
	const query = `
		SELECT company_id::text, module_name, is_active, activated_on, expires_on, updated_at
		FROM company_modules
		WHERE company_id = $1 AND module_name = $2`
	var m entity.CompanyModule
	err := r.q.QueryRow(ctx, query, companyID, moduleName).Scan(
		&m.CompanyID, &m.ModuleName, &m.IsActive, &m.ActivatedOn, &m.ExpiresOn, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, mapPgError(fmt.Errorf("get module %s: %w", moduleName, err))
	}
	return &m, nil
}

// ListModules lista los módulos de la empresa ordenados por nombre.
func (r *CompanyRepo) ListModules(ctx context.Context, companyID string) ([]*entity.CompanyModule, error) {
	const query = `
		SELECT company_id::text, module_name, is_active, activated_on, expires_on, updated_at
		FROM company_modules
		WHERE company_id = $1
		ORDER BY module_name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("list modules: %w", err))
	}
	defer rows.Close()

	list := make([]*entity.CompanyModule, 0)
	for rows.Next() {
		var m entity.CompanyModule
		if err := rows.Scan(&m.CompanyID, &m.ModuleName, &m.IsActive, &m.ActivatedOn, &m.ExpiresOn, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// UpsertModule crea o reemplaza la activación del módulo.
func (r *CompanyRepo) UpsertModule(ctx context.Context, m *entity.CompanyModule) error {
	const query = `
		INSERT INTO company_modules (company_id, module_name, is_active, activated_on, expires_on, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, module_name) DO UPDATE SET
			is_active    = EXCLUDED.is_active,
			activated_on = EXCLUDED.activated_on,
			expires_on   = EXCLUDED.expires_on,
			updated_at   = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		m.CompanyID, m.ModuleName, m.IsActive, m.ActivatedOn, m.ExpiresOn, m.UpdatedAt,
	)
	if err != nil {
		return mapPgError(fmt.Errorf("upsert module %s: %w", m.ModuleName, err))
	}
	return nil
}
