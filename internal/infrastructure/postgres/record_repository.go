package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var _ repository.RecordRepository = (*RecordRepo)(nil)

// RecordRepo implementación genérica de RecordRepository sobre PostgreSQL.
// Colecciones y columnas se validan contra el catálogo: ningún identificador llega al SQL
// sin estar declarado. Los valores viajan siempre como parámetros.
type RecordRepo struct {
	q       Querier
	catalog access.Catalog
}

// NewRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecordRepository(q Querier, catalog access.Catalog) *RecordRepo {
	return &RecordRepo{q: q, catalog: catalog}
}

// Find ejecuta SELECT con los filtros en conjunción.
func (r *RecordRepo) Find(ctx context.Context, query repository.Query) ([]entity.Record, error) {
	sql, args, err := buildSelect(r.catalog, query)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("select %s: %w", query.Collection, err))
	}
	defer rows.Close()

	out, err := collectRecords(rows)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("select %s: %w", query.Collection, err))
	}
	return out, nil
}

// Insert inserta una fila y devuelve la fila persistida (con valores por defecto de la DB).
func (r *RecordRepo) Insert(ctx context.Context, collection string, payload entity.Record) (entity.Record, error) {
	sql, args, err := buildInsert(r.catalog, collection, payload)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("insert %s: %w", collection, err))
	}
	defer rows.Close()

	out, err := collectRecords(rows)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("insert %s: %w", collection, err))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert %s: sin fila devuelta", collection)
	}
	return out[0], nil
}

// Update aplica payload a las filas que cumplen filters. Exige al menos un filtro.
func (r *RecordRepo) Update(ctx context.Context, collection string, payload entity.Record, filters []repository.Filter) (int64, error) {
	sql, args, err := buildUpdate(r.catalog, collection, payload, filters)
	if err != nil {
		return 0, err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapPgError(fmt.Errorf("update %s: %w", collection, err))
	}
	return tag.RowsAffected(), nil
}

// Delete borra las filas que cumplen filters. Exige al menos un filtro.
func (r *RecordRepo) Delete(ctx context.Context, collection string, filters []repository.Filter) (int64, error) {
	sql, args, err := buildDelete(r.catalog, collection, filters)
	if err != nil {
		return 0, err
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapPgError(fmt.Errorf("delete %s: %w", collection, err))
	}
	return tag.RowsAffected(), nil
}

// ── Construcción de SQL ───────────────────────────────────────────────────────

func buildSelect(c access.Catalog, q repository.Query) (string, []any, error) {
	k, err := lookupKind(c, q.Collection)
	if err != nil {
		return "", nil, err
	}
	cols, err := quoteColumns(k, k.Columns)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), ident(k.Name))

	where, args, err := buildWhere(k, q.Filters, 1)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	orders := q.OrderBy
	if len(orders) == 0 && (q.Limit > 0 || q.Offset > 0) {
		orders = []repository.Order{{Field: access.FieldID}}
	}
	if len(orders) > 0 {
		parts := make([]string, 0, len(orders))
		for _, o := range orders {
			if !k.HasColumn(o.Field) {
				return "", nil, fmt.Errorf("%w: orden por columna %q", domain.ErrInvalidInput, o.Field)
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, ident(o.Field)+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args, nil
}

func buildInsert(c access.Catalog, collection string, payload entity.Record) (string, []any, error) {
	k, err := lookupKind(c, collection)
	if err != nil {
		return "", nil, err
	}
	if len(payload) == 0 {
		return "", nil, fmt.Errorf("%w: insert sin columnas", domain.ErrInvalidInput)
	}
	names := sortedKeys(payload)
	cols, err := quoteColumns(k, names)
	if err != nil {
		return "", nil, err
	}
	returning, _ := quoteColumns(k, k.Columns)

	args := make([]any, 0, len(names))
	holders := make([]string, 0, len(names))
	for _, n := range names {
		args = append(args, payload[n])
		holders = append(holders, fmt.Sprintf("$%d", len(args)))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		ident(k.Name), strings.Join(cols, ", "), strings.Join(holders, ", "), strings.Join(returning, ", "))
	return sql, args, nil
}

func buildUpdate(c access.Catalog, collection string, payload entity.Record, filters []repository.Filter) (string, []any, error) {
	k, err := lookupKind(c, collection)
	if err != nil {
		return "", nil, err
	}
	if len(payload) == 0 {
		return "", nil, fmt.Errorf("%w: update sin columnas", domain.ErrInvalidInput)
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("%w: update sin filtros", domain.ErrInvalidInput)
	}
	names := sortedKeys(payload)
	cols, err := quoteColumns(k, names)
	if err != nil {
		return "", nil, err
	}
	args := make([]any, 0, len(names)+len(filters))
	sets := make([]string, 0, len(names))
	for i, n := range names {
		args = append(args, payload[n])
		sets = append(sets, fmt.Sprintf("%s = $%d", cols[i], len(args)))
	}
	where, wargs, err := buildWhere(k, filters, len(args)+1)
	if err != nil {
		return "", nil, err
	}
	args = append(args, wargs...)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s", ident(k.Name), strings.Join(sets, ", "), where)
	return sql, args, nil
}

func buildDelete(c access.Catalog, collection string, filters []repository.Filter) (string, []any, error) {
	k, err := lookupKind(c, collection)
	if err != nil {
		return "", nil, err
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("%w: delete sin filtros", domain.ErrInvalidInput)
	}
	where, args, err := buildWhere(k, filters, 1)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", ident(k.Name), where), args, nil
}

// buildWhere traduce los filtros a condiciones unidas por AND. Los marcadores empiezan en $start.
// IN con lista vacía no puede cumplirse y se traduce a FALSE.
func buildWhere(k *access.Kind, filters []repository.Filter, start int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	n := start
	args := make([]any, 0, len(filters))
	conds := make([]string, 0, len(filters))
	for _, f := range filters {
		if !k.HasColumn(f.Field) {
			return "", nil, fmt.Errorf("%w: columna %q en %s", domain.ErrInvalidInput, f.Field, k.Name)
		}
		col := ident(f.Field)
		switch f.Op {
		case repository.OpEq:
			conds = append(conds, fmt.Sprintf("%s = $%d", col, n))
			args = append(args, f.Value)
			n++
		case repository.OpGte:
			conds = append(conds, fmt.Sprintf("%s >= $%d", col, n))
			args = append(args, f.Value)
			n++
		case repository.OpLte:
			conds = append(conds, fmt.Sprintf("%s <= $%d", col, n))
			args = append(args, f.Value)
			n++
		case repository.OpIn:
			vals, ok := f.Value.([]any)
			if !ok {
				return "", nil, fmt.Errorf("%w: IN sin lista en %q", domain.ErrInvalidInput, f.Field)
			}
			if len(vals) == 0 {
				conds = append(conds, "FALSE")
				continue
			}
			holders := make([]string, 0, len(vals))
			for _, v := range vals {
				holders = append(holders, fmt.Sprintf("$%d", n))
				args = append(args, v)
				n++
			}
			conds = append(conds, fmt.Sprintf("%s IN (%s)", col, strings.Join(holders, ", ")))
		default:
			return "", nil, fmt.Errorf("%w: operador %q", domain.ErrInvalidInput, f.Op)
		}
	}
	return strings.Join(conds, " AND "), args, nil
}

func lookupKind(c access.Catalog, collection string) (*access.Kind, error) {
	k := c.Lookup(collection)
	if k == nil {
		return nil, fmt.Errorf("%w: colección %q no declarada", domain.ErrInvalidInput, collection)
	}
	return k, nil
}

func quoteColumns(k *access.Kind, names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !k.HasColumn(n) {
			return nil, fmt.Errorf("%w: columna %q en %s", domain.ErrInvalidInput, n, k.Name)
		}
		out = append(out, ident(n))
	}
	return out, nil
}

func ident(name string) string { return pgx.Identifier{name}.Sanitize() }

func sortedKeys(r entity.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ── Lectura de filas ──────────────────────────────────────────────────────────

func collectRecords(rows pgx.Rows) ([]entity.Record, error) {
	fields := rows.FieldDescriptions()
	out := make([]entity.Record, 0)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(entity.Record, len(vals))
		for i, fd := range fields {
			rec[fd.Name] = normalizeValue(fd.DataTypeOID, vals[i])
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// normalizeValue deja los valores listos para JSON: UUID como texto y DATE como YYYY-MM-DD.
func normalizeValue(oid uint32, v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case [16]byte:
		return uuid.UUID(x).String()
	case time.Time:
		if oid == pgtype.DateOID {
			return x.Format("2006-01-02")
		}
		return x
	}
	return v
}
