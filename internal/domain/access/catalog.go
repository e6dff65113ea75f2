package access

import "github.com/jhoicas/Gestion-api/internal/domain/entity"

// Columnas de ámbito.
const (
	FieldID        = "id"
	FieldTenant    = "empresa_id"
	FieldAgent     = "comercial_id"
	FieldCreatedAt = "created_at"
)

// AgentLink enlace indirecto entre un agente y una colección: los registros del destino
// visibles son aquellos cuyo TargetField aparece en SourceField de algún registro de Source
// propiedad del agente.
type AgentLink struct {
	Source      string
	SourceField string
	TargetField string
}

// Kind declaración de una colección con ámbito.
type Kind struct {
	Name           string
	TenantField    string
	AgentField     string     // vacío si los registros no pertenecen a un agente
	AgentLink      *AgentLink // solo para colecciones enlazadas indirectamente
	Module         string     // módulo requerido; vacío = sin restricción
	Columns        []string
	DeadlineFields []string // campos de vencimiento por prioridad
}

// HasColumn informa si la columna está declarada para la colección.
func (k *Kind) HasColumn(name string) bool {
	for _, c := range k.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ScopeColumns columnas que fija el alcance y que un payload no puede modificar.
func (k *Kind) ScopeColumns() []string {
	cols := []string{k.TenantField}
	if k.AgentField != "" {
		cols = append(cols, k.AgentField)
	}
	return cols
}

// AgentOwned informa si los registros pertenecen directamente a un agente.
func (k *Kind) AgentOwned() bool { return k.AgentField != "" }

func cols(extra ...string) []string {
	return append([]string{FieldID, FieldTenant, FieldCreatedAt}, extra...)
}

// Catalog conjunto de colecciones conocidas indexado por nombre.
type Catalog map[string]*Kind

// Lookup devuelve la colección o nil.
func (c Catalog) Lookup(name string) *Kind { return c[name] }

// DefaultCatalog colecciones del sistema.
func DefaultCatalog() Catalog {
	kinds := []*Kind{
		{
			Name:        "empresas",
			TenantField: FieldID,
			Columns:     []string{FieldID, "nombre", "cif", "direccion", "telefono", "email", "estado", FieldCreatedAt},
		},
		{
			Name:        "acciones_formativas",
			TenantField: FieldTenant,
			Columns:     cols("codigo", "denominacion", "modalidad", "horas", "area", "fecha_alta"),
		},
		{
			Name:           "grupos",
			TenantField:    FieldTenant,
			Columns:        cols("accion_formativa_id", "codigo", "estado", "fecha_inicio", "fecha_fin", "fecha_justificacion", "importe"),
			DeadlineFields: []string{"fecha_fin", "fecha_justificacion"},
		},
		{
			Name:        "participantes",
			TenantField: FieldTenant,
			Columns:     cols("grupo_id", "nombre", "apellidos", "dni", "email", "estado", "fecha_alta"),
		},
		{
			Name:           "proyectos",
			TenantField:    FieldTenant,
			Columns:        cols("nombre", "estado", "presupuesto", "fecha_inicio", "fecha_fin", "fecha_justificacion"),
			DeadlineFields: []string{"fecha_fin", "fecha_justificacion"},
		},
		{
			Name:           "oportunidades",
			TenantField:    FieldTenant,
			AgentField:     FieldAgent,
			Columns:        cols(FieldAgent, "cliente_id", "titulo", "estado", "importe", "fecha_cierre"),
			DeadlineFields: []string{"fecha_cierre"},
		},
		{
			Name:           "tareas",
			TenantField:    FieldTenant,
			AgentField:     FieldAgent,
			Columns:        cols(FieldAgent, "cliente_id", "titulo", "estado", "prioridad", "fecha_vencimiento"),
			DeadlineFields: []string{"fecha_vencimiento"},
		},
		{
			Name:        "comunicaciones",
			TenantField: FieldTenant,
			AgentField:  FieldAgent,
			Columns:     cols(FieldAgent, "cliente_id", "canal", "asunto", "fecha"),
		},
		{
			Name:        "clientes",
			TenantField: FieldTenant,
			AgentLink:   &AgentLink{Source: "oportunidades", SourceField: "cliente_id", TargetField: FieldID},
			Columns:     cols("nombre", "cif", "email", "telefono", "sector", "fecha_alta"),
		},
		{
			Name:           "no_conformidades",
			TenantField:    FieldTenant,
			Module:         entity.ModuleISO,
			Columns:        cols("codigo", "descripcion", "tipo", "estado", "fecha_deteccion", "fecha_limite", "fecha_cierre"),
			DeadlineFields: []string{"fecha_limite"},
		},
		{
			Name:           "auditorias",
			TenantField:    FieldTenant,
			Module:         entity.ModuleISO,
			Columns:        cols("tipo", "norma", "estado", "auditor", "fecha_prevista", "fecha_realizada"),
			DeadlineFields: []string{"fecha_prevista"},
		},
		{
			Name:           "solicitudes_rgpd",
			TenantField:    FieldTenant,
			Columns:        cols("tipo", "solicitante", "email", "estado", "fecha_solicitud", "fecha_limite", "fecha_respuesta"),
			DeadlineFields: []string{"fecha_limite"},
		},
	}
	c := make(Catalog, len(kinds))
	for _, k := range kinds {
		c[k.Name] = k
	}
	return c
}
