package dto

import "time"

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CIF       string    `json:"cif"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetModuleRequest cuerpo de PUT /api/empresas/:id/modulos/:modulo.
type SetModuleRequest struct {
	IsActive    *bool  `json:"is_active" validate:"required"`
	ActivatedOn string `json:"activated_on" validate:"omitempty,datetime=2006-01-02"` // vacío = desde siempre
	ExpiresOn   string `json:"expires_on" validate:"omitempty,datetime=2006-01-02"`   // vacío = sin vencimiento
}

// ModuleResponse estado de un módulo en una empresa.
type ModuleResponse struct {
	CompanyID   string    `json:"company_id"`
	ModuleName  string    `json:"module_name"`
	IsActive    bool      `json:"is_active"`
	ActivatedOn *string   `json:"activated_on"`
	ExpiresOn   *string   `json:"expires_on"`
	ActiveToday bool      `json:"active_today"` // flag + vigencia evaluados hoy
	UpdatedAt   time.Time `json:"updated_at"`
}

// ModuleListResponse módulos de una empresa.
type ModuleListResponse struct {
	CompanyID string           `json:"company_id"`
	Items     []ModuleResponse `json:"items"`
}
