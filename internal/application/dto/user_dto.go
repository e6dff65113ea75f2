package dto

import "time"

// RegisterRequest entrada para alta de usuario (solo administrador).
// gestor y comercial requieren company_id; comercial_id por defecto es el ID del usuario.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
	AgentID   string `json:"comercial_id" validate:"omitempty,max=64"`
	Name      string `json:"name" validate:"omitempty,max=200"`
	Role      string `json:"role" validate:"required,oneof=admin gestor comercial"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	AgentID   string    `json:"comercial_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
