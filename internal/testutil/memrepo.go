// Package testutil contiene dobles de prueba compartidos por los tests de aplicación y HTTP.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*MemRepo)(nil)

// MemRepo implementación en memoria de RecordRepository que además registra las llamadas.
type MemRepo struct {
	mu      sync.Mutex
	data    map[string][]entity.Record
	Calls   []string           // "find:<col>", "insert:<col>", ...
	Queries []repository.Query // consultas Find recibidas
	Err     error              // si no es nil, todas las operaciones fallan con él
}

// NewMemRepo construye el repositorio con datos iniciales por colección.
func NewMemRepo(seed map[string][]entity.Record) *MemRepo {
	data := make(map[string][]entity.Record, len(seed))
	for col, rows := range seed {
		for _, r := range rows {
			data[col] = append(data[col], r.Clone())
		}
	}
	return &MemRepo{data: data}
}

// CallCount número total de llamadas recibidas.
func (m *MemRepo) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Rows devuelve una copia de la colección.
func (m *MemRepo) Rows(col string) []entity.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Record, 0, len(m.data[col]))
	for _, r := range m.data[col] {
		out = append(out, r.Clone())
	}
	return out
}

func (m *MemRepo) Find(_ context.Context, q repository.Query) ([]entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "find:"+q.Collection)
	m.Queries = append(m.Queries, q)
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]entity.Record, 0)
	for _, r := range m.data[q.Collection] {
		if Match(r, q.Filters) {
			out = append(out, r.Clone())
		}
	}
	if len(q.OrderBy) > 0 {
		o := q.OrderBy[0]
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].Text(o.Field)
			b, _ := out[j].Text(o.Field)
			if o.Desc {
				return a > b
			}
			return a < b
		})
	}
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []entity.Record{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemRepo) Insert(_ context.Context, col string, payload entity.Record) (entity.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "insert:"+col)
	if m.Err != nil {
		return nil, m.Err
	}
	r := payload.Clone()
	m.data[col] = append(m.data[col], r)
	return r.Clone(), nil
}

func (m *MemRepo) Update(_ context.Context, col string, payload entity.Record, filters []repository.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "update:"+col)
	if m.Err != nil {
		return 0, m.Err
	}
	if len(filters) == 0 {
		return 0, domain.ErrInvalidInput
	}
	var n int64
	for _, r := range m.data[col] {
		if Match(r, filters) {
			for k, v := range payload {
				r[k] = v
			}
			n++
		}
	}
	return n, nil
}

func (m *MemRepo) Delete(_ context.Context, col string, filters []repository.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, "delete:"+col)
	if m.Err != nil {
		return 0, m.Err
	}
	if len(filters) == 0 {
		return 0, domain.ErrInvalidInput
	}
	kept := m.data[col][:0]
	var n int64
	for _, r := range m.data[col] {
		if Match(r, filters) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.data[col] = kept
	return n, nil
}

// Match evalúa los filtros (AND) sobre una fila con la misma semántica que el adaptador SQL.
func Match(r entity.Record, filters []repository.Filter) bool {
	for _, f := range filters {
		if !matchOne(r, f) {
			return false
		}
	}
	return true
}

func matchOne(r entity.Record, f repository.Filter) bool {
	got, ok := r.Text(f.Field)
	if !ok {
		return false
	}
	switch f.Op {
	case repository.OpEq:
		return got == fmt.Sprint(f.Value)
	case repository.OpIn:
		vals, _ := f.Value.([]any)
		for _, v := range vals {
			if got == fmt.Sprint(v) {
				return true
			}
		}
		return false
	case repository.OpGte, repository.OpLte:
		if a, ok := r.Date(f.Field); ok {
			if b, ok := entity.ParseDate(f.Value); ok {
				if f.Op == repository.OpGte {
					return !a.Before(b)
				}
				return !a.After(b)
			}
		}
		if a, ok := r.Decimal(f.Field); ok {
			if b, ok := (entity.Record{"v": f.Value}).Decimal("v"); ok {
				if f.Op == repository.OpGte {
					return a.GreaterThanOrEqual(b)
				}
				return a.LessThanOrEqual(b)
			}
		}
		want := fmt.Sprint(f.Value)
		if f.Op == repository.OpGte {
			return got >= want
		}
		return got <= want
	}
	return false
}
