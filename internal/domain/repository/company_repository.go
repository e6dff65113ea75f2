package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para empresas y sus módulos (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	// GetModule devuelve nil, nil si la empresa no tiene fila para ese módulo.
	GetModule(ctx context.Context, companyID, moduleName string) (*entity.CompanyModule, error)
	ListModules(ctx context.Context, companyID string) ([]*entity.CompanyModule, error)
	UpsertModule(ctx context.Context, module *entity.CompanyModule) error
}
