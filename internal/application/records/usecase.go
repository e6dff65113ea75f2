// Package records implementa el acceso a datos con ámbito: toda lectura o escritura pasa
// por el resolvedor de alcance antes de llegar al repositorio genérico.
package records

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// FetchParams filtros y paginación elegidos por el usuario. Limit 0 = sin límite.
type FetchParams struct {
	Filters []repository.Filter
	OrderBy []repository.Order
	Limit   int
	Offset  int
}

// UseCase casos de uso CRUD con ámbito.
type UseCase struct {
	resolver *access.Resolver
	repo     repository.RecordRepository
	newID    func() string
}

// NewUseCase construye el caso de uso.
func NewUseCase(resolver *access.Resolver, repo repository.RecordRepository) *UseCase {
	return &UseCase{
		resolver: resolver,
		repo:     repo,
		newID:    func() string { return uuid.New().String() },
	}
}

// Kind devuelve la declaración de la colección o nil.
func (uc *UseCase) Kind(name string) *access.Kind {
	return uc.resolver.Catalog().Lookup(name)
}

// Fetch lectura con ámbito. Si el alcance no se puede resolver no se consulta el repositorio.
func (uc *UseCase) Fetch(ctx context.Context, p entity.Principal, kind string, params FetchParams) ([]entity.Record, error) {
	d, err := uc.resolver.Resolve(ctx, p, kind)
	if err != nil {
		return nil, err
	}
	if err := validateFilters(d.Kind, params.Filters); err != nil {
		return nil, err
	}
	for _, o := range params.OrderBy {
		if !d.Kind.HasColumn(o.Field) {
			return nil, fmt.Errorf("%w: orden por columna desconocida %q", domain.ErrInvalidInput, o.Field)
		}
	}

	filters := d.Apply(params.Filters)
	if d.Membership != nil {
		ids, err := uc.membershipIDs(ctx, d.Membership)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []entity.Record{}, nil
		}
		filters = append(filters, d.MembershipFilter(ids))
	}

	rows, err := uc.repo.Find(ctx, repository.Query{
		Collection: d.Kind.Name,
		Filters:    filters,
		OrderBy:    params.OrderBy,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("records: consultar %s: %w", d.Kind.Name, err)
	}
	if rows == nil {
		rows = []entity.Record{}
	}
	return rows, nil
}

// Get devuelve un registro por ID dentro del ámbito del principal.
func (uc *UseCase) Get(ctx context.Context, p entity.Principal, kind, id string) (entity.Record, error) {
	rows, err := uc.Fetch(ctx, p, kind, FetchParams{
		Filters: []repository.Filter{repository.Eq(access.FieldID, id)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return rows[0], nil
}

// Create inserta un registro. Las columnas de ámbito se fijan desde el principal.
func (uc *UseCase) Create(ctx context.Context, p entity.Principal, kind string, payload entity.Record) (entity.Record, error) {
	d, err := uc.resolver.Resolve(ctx, p, kind)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(d.Kind, payload); err != nil {
		return nil, err
	}

	rec := payload.Clone()
	switch d.Capability {
	case access.CapReadAll:
		if d.Kind.TenantField != access.FieldID {
			if _, ok := rec.Text(d.Kind.TenantField); !ok {
				return nil, fmt.Errorf("%w: %s es obligatorio", domain.ErrInvalidInput, d.Kind.TenantField)
			}
		}
	default:
		if d.Membership != nil || d.Kind.TenantField == access.FieldID {
			return nil, fmt.Errorf("%w: alta no permitida en %s", domain.ErrForbidden, d.Kind.Name)
		}
		for _, f := range d.Filters {
			rec[f.Field] = f.Value
		}
	}
	if _, ok := rec.Text(access.FieldID); !ok {
		rec[access.FieldID] = uc.newID()
	}

	out, err := uc.repo.Insert(ctx, d.Kind.Name, rec)
	if err != nil {
		return nil, fmt.Errorf("records: alta en %s: %w", d.Kind.Name, err)
	}
	return out, nil
}

// Update modifica un registro del ámbito. Devuelve ErrNotFound si no hay fila visible con ese ID.
func (uc *UseCase) Update(ctx context.Context, p entity.Principal, kind, id string, payload entity.Record) error {
	d, err := uc.resolver.Resolve(ctx, p, kind)
	if err != nil {
		return err
	}
	if err := validatePayload(d.Kind, payload); err != nil {
		return err
	}

	changes := payload.Clone()
	delete(changes, access.FieldID)
	if d.Capability != access.CapReadAll {
		for _, col := range d.Kind.ScopeColumns() {
			delete(changes, col)
		}
	}
	if len(changes) == 0 {
		return fmt.Errorf("%w: sin cambios", domain.ErrInvalidInput)
	}

	filters := d.Apply([]repository.Filter{repository.Eq(access.FieldID, id)})
	if d.Membership != nil {
		ids, err := uc.membershipIDs(ctx, d.Membership)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return domain.ErrNotFound
		}
		filters = append(filters, d.MembershipFilter(ids))
	}

	n, err := uc.repo.Update(ctx, d.Kind.Name, changes, filters)
	if err != nil {
		return fmt.Errorf("records: actualizar %s: %w", d.Kind.Name, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra un registro. Solo el administrador puede borrar.
func (uc *UseCase) Delete(ctx context.Context, p entity.Principal, kind, id string) error {
	d, err := uc.resolver.Resolve(ctx, p, kind)
	if err != nil {
		return err
	}
	if d.Capability != access.CapReadAll {
		return fmt.Errorf("%w: borrado reservado al administrador", domain.ErrForbidden)
	}
	n, err := uc.repo.Delete(ctx, d.Kind.Name, d.Apply([]repository.Filter{repository.Eq(access.FieldID, id)}))
	if err != nil {
		return fmt.Errorf("records: borrar %s: %w", d.Kind.Name, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// membershipIDs primer paso del descriptor indirecto: valores distintos de SourceField.
func (uc *UseCase) membershipIDs(ctx context.Context, m *access.Membership) ([]any, error) {
	rows, err := uc.repo.Find(ctx, repository.Query{Collection: m.Source, Filters: m.SourceFilters})
	if err != nil {
		return nil, fmt.Errorf("records: resolver pertenencia vía %s: %w", m.Source, err)
	}
	seen := make(map[string]struct{}, len(rows))
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		v, ok := r.Text(m.SourceField)
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		keys = append(keys, v)
	}
	sort.Strings(keys)
	ids := make([]any, len(keys))
	for i, k := range keys {
		ids[i] = k
	}
	return ids, nil
}

func validateFilters(k *access.Kind, filters []repository.Filter) error {
	for _, f := range filters {
		if !k.HasColumn(f.Field) {
			return fmt.Errorf("%w: filtro por columna desconocida %q", domain.ErrInvalidInput, f.Field)
		}
		switch f.Op {
		case repository.OpEq, repository.OpGte, repository.OpLte:
		case repository.OpIn:
			if _, ok := f.Value.([]any); !ok {
				return fmt.Errorf("%w: filtro IN sin lista de valores", domain.ErrInvalidInput)
			}
		default:
			return fmt.Errorf("%w: operador %q", domain.ErrInvalidInput, f.Op)
		}
	}
	return nil
}

func validatePayload(k *access.Kind, payload entity.Record) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: cuerpo vacío", domain.ErrInvalidInput)
	}
	for col := range payload {
		if !k.HasColumn(col) {
			return fmt.Errorf("%w: columna desconocida %q en %s", domain.ErrInvalidInput, col, k.Name)
		}
	}
	return nil
}
