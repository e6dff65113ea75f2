package entity

import "strings"

// Roles válidos para User y Principal.
const (
	RoleAdmin     = "admin"
	RoleGestor    = "gestor"    // gestor de una empresa (tenant)
	RoleComercial = "comercial" // agente de ventas de una empresa
)

// Principal identidad del llamante durante una petición.
// Se construye una vez a partir del token y no se modifica después; se pasa por parámetro.
type Principal struct {
	Role      string
	TenantID  string // empresa_id; vacío para admin
	AgentID   string // comercial_id; solo para comercial
	SubjectID string // user_id
}

// NewPrincipal normaliza el rol y recorta espacios de los identificadores.
func NewPrincipal(role, tenantID, agentID, subjectID string) Principal {
	return Principal{
		Role:      strings.ToLower(strings.TrimSpace(role)),
		TenantID:  strings.TrimSpace(tenantID),
		AgentID:   strings.TrimSpace(agentID),
		SubjectID: strings.TrimSpace(subjectID),
	}
}

// IsAdmin informa si el principal es administrador global.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// HasTenant informa si el principal tiene empresa asignada.
func (p Principal) HasTenant() bool { return p.TenantID != "" }

// ValidRole informa si el rol pertenece al conjunto conocido.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleGestor, RoleComercial:
		return true
	}
	return false
}
