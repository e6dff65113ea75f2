package repository

import (
	"context"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// FilterOp operador de una restricción sobre una columna.
type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpIn  FilterOp = "in"  // Value es []any con los valores admitidos
	OpGte FilterOp = "gte"
	OpLte FilterOp = "lte"
)

// Filter restricción sobre una columna de la colección.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Eq construye una restricción de igualdad.
func Eq(field string, value any) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

// In construye una restricción de pertenencia.
func In(field string, values []any) Filter { return Filter{Field: field, Op: OpIn, Value: values} }

// Order criterio de ordenación.
type Order struct {
	Field string
	Desc  bool
}

// Query lectura sobre una colección. Limit 0 = sin límite.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    []Order
	Limit      int
	Offset     int
}

// RecordRepository interfaz genérica de consulta sobre el backend relacional.
// Es el único contrato entre el núcleo y la persistencia: los filtros obligatorios del
// alcance ya vienen mezclados en Filters cuando se llama a cualquier método.
type RecordRepository interface {
	Find(ctx context.Context, q Query) ([]entity.Record, error)
	Insert(ctx context.Context, collection string, payload entity.Record) (entity.Record, error)
	// Update y Delete rechazan llamadas sin filtros.
	Update(ctx context.Context, collection string, payload entity.Record, filters []Filter) (int64, error)
	Delete(ctx context.Context, collection string, filters []Filter) (int64, error)
}
