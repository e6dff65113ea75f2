package entity

import "time"

// User representa un usuario del sistema. CompanyID vacío solo para admin.
type User struct {
	ID           string
	CompanyID    string
	AgentID      string // comercial_id de los registros CRM que le pertenecen
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, gestor, comercial
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal construye la identidad de petición del usuario.
func (u *User) Principal() Principal {
	return NewPrincipal(u.Role, u.CompanyID, u.AgentID, u.ID)
}
