// Package access resuelve el alcance de datos de un principal: qué filtros obligatorios
// deben acompañar a cualquier consulta sobre una colección y qué puede hacer con ella.
//
// Reglas:
//   - admin: sin filtros, lectura y escritura sobre todo (incluye borrados).
//   - gestor: filtro por su empresa en todas las colecciones.
//   - comercial: empresa + agente en las colecciones CRM que le pertenecen; en las
//     enlazadas indirectamente (clientes) un descriptor en dos pasos por pertenencia de IDs.
//   - cualquier otro rol, o colección sin alcance definido: ErrUnauthorized.
//
// Las colecciones con módulo (calidad/ISO) exigen además que la empresa lo tenga vigente.
// Toda resolución fallida bloquea la consulta.
package access

import (
	"context"
	"fmt"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Capability nivel de control sobre la colección.
type Capability string

const (
	CapReadAll           Capability = "READ_ALL"
	CapReadWriteOwn      Capability = "READ_WRITE_OWN"
	CapReadWriteAssigned Capability = "READ_WRITE_ASSIGNED"
)

// Membership primer paso de un descriptor indirecto: leer SourceField de Source bajo
// SourceFilters y restringir el destino a TargetField IN (valores leídos).
type Membership struct {
	Source        string
	SourceFilters []repository.Filter
	SourceField   string
	TargetField   string
}

// Descriptor alcance resuelto para un principal y una colección.
type Descriptor struct {
	Kind       *Kind
	Filters    []repository.Filter // igualdades obligatorias sobre la colección destino
	Membership *Membership
	Capability Capability
}

// Apply antepone los filtros del usuario a los obligatorios. Los obligatorios van siempre
// al final y nunca se eliminan.
func (d *Descriptor) Apply(user []repository.Filter) []repository.Filter {
	out := make([]repository.Filter, 0, len(user)+len(d.Filters))
	out = append(out, user...)
	return append(out, d.Filters...)
}

// MembershipFilter restricción del segundo paso con los IDs obtenidos en el primero.
func (d *Descriptor) MembershipFilter(ids []any) repository.Filter {
	return repository.In(d.Membership.TargetField, ids)
}

// FeatureChecker verifica si una empresa tiene un módulo vigente.
// Lo implementa *usecase.ModuleService.
type FeatureChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// Resolver traduce (principal, colección) a Descriptor.
type Resolver struct {
	catalog  Catalog
	features FeatureChecker
}

// NewResolver construye el resolvedor.
func NewResolver(catalog Catalog, features FeatureChecker) *Resolver {
	return &Resolver{catalog: catalog, features: features}
}

// Catalog devuelve el catálogo de colecciones.
func (r *Resolver) Catalog() Catalog { return r.catalog }

// Resolve devuelve el alcance del principal sobre la colección kind.
func (r *Resolver) Resolve(ctx context.Context, p entity.Principal, kind string) (*Descriptor, error) {
	k := r.catalog.Lookup(kind)
	if k == nil {
		return nil, fmt.Errorf("%w: colección %q sin alcance definido", domain.ErrUnauthorized, kind)
	}

	switch p.Role {
	case entity.RoleAdmin:
		return &Descriptor{Kind: k, Filters: []repository.Filter{}, Capability: CapReadAll}, nil

	case entity.RoleGestor:
		if !p.HasTenant() {
			return nil, domain.ErrMissingTenant
		}
		if err := r.checkFeature(ctx, p.TenantID, k); err != nil {
			return nil, err
		}
		return &Descriptor{
			Kind:       k,
			Filters:    []repository.Filter{repository.Eq(k.TenantField, p.TenantID)},
			Capability: CapReadWriteOwn,
		}, nil

	case entity.RoleComercial:
		return r.resolveAgent(ctx, p, k)

	default:
		return nil, fmt.Errorf("%w: rol %q", domain.ErrUnauthorized, p.Role)
	}
}

func (r *Resolver) resolveAgent(ctx context.Context, p entity.Principal, k *Kind) (*Descriptor, error) {
	if !p.HasTenant() {
		return nil, domain.ErrMissingTenant
	}
	if p.AgentID == "" {
		return nil, domain.ErrMissingAgent
	}

	var d *Descriptor
	switch {
	case k.AgentOwned():
		d = &Descriptor{
			Kind: k,
			Filters: []repository.Filter{
				repository.Eq(k.TenantField, p.TenantID),
				repository.Eq(k.AgentField, p.AgentID),
			},
			Capability: CapReadWriteAssigned,
		}
	case k.AgentLink != nil:
		src := r.catalog.Lookup(k.AgentLink.Source)
		if src == nil || !src.AgentOwned() {
			return nil, fmt.Errorf("%w: enlace de %q sin origen propio del agente", domain.ErrUnauthorized, k.Name)
		}
		d = &Descriptor{
			Kind:    k,
			Filters: []repository.Filter{repository.Eq(k.TenantField, p.TenantID)},
			Membership: &Membership{
				Source: src.Name,
				SourceFilters: []repository.Filter{
					repository.Eq(src.TenantField, p.TenantID),
					repository.Eq(src.AgentField, p.AgentID),
				},
				SourceField: k.AgentLink.SourceField,
				TargetField: k.AgentLink.TargetField,
			},
			Capability: CapReadWriteAssigned,
		}
	default:
		return nil, fmt.Errorf("%w: comercial sin acceso a %q", domain.ErrUnauthorized, k.Name)
	}

	if err := r.checkFeature(ctx, p.TenantID, k); err != nil {
		return nil, err
	}
	return d, nil
}

// checkFeature distingue "no contratado" (ErrFeatureNotEnabled) de un fallo al consultarlo.
func (r *Resolver) checkFeature(ctx context.Context, tenantID string, k *Kind) error {
	if k.Module == "" {
		return nil
	}
	if r.features == nil {
		return fmt.Errorf("access: sin verificador para el módulo %s: %w", k.Module, domain.ErrFeatureNotEnabled)
	}
	active, err := r.features.HasActiveModule(ctx, tenantID, k.Module)
	if err != nil {
		return fmt.Errorf("access: verificar módulo %s: %w", k.Module, err)
	}
	if !active {
		return fmt.Errorf("%w: %s", domain.ErrFeatureNotEnabled, k.Module)
	}
	return nil
}
