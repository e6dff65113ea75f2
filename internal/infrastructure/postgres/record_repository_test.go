package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

var catalog = access.DefaultCatalog()

// ── SELECT ────────────────────────────────────────────────────────────────────

func TestBuildSelect_FiltrosEnConjuncionYParametros(t *testing.T) {
	sql, args, err := buildSelect(catalog, repository.Query{
		Collection: "oportunidades",
		Filters: []repository.Filter{
			repository.Eq("estado", "abierta"),
			{Field: "fecha_cierre", Op: repository.OpGte, Value: "2024-01-01"},
			repository.Eq("empresa_id", "e1"),
			repository.Eq("comercial_id", "c1"),
		},
		OrderBy: []repository.Order{{Field: "fecha_cierre", Desc: true}},
		Limit:   20,
		Offset:  40,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "empresa_id", "created_at", "comercial_id", "cliente_id", "titulo", "estado", "importe", "fecha_cierre" FROM "oportunidades"`+
			` WHERE "estado" = $1 AND "fecha_cierre" >= $2 AND "empresa_id" = $3 AND "comercial_id" = $4`+
			` ORDER BY "fecha_cierre" DESC LIMIT $5 OFFSET $6`, sql)
	assert.Equal(t, []any{"abierta", "2024-01-01", "e1", "c1", 20, 40}, args)
}

func TestBuildSelect_SinFiltrosNiPaginacion(t *testing.T) {
	sql, args, err := buildSelect(catalog, repository.Query{Collection: "empresas"})
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "nombre", "cif", "direccion", "telefono", "email", "estado", "created_at" FROM "empresas"`, sql)
	assert.Empty(t, args)
}

func TestBuildSelect_PaginacionOrdenaPorIDPorDefecto(t *testing.T) {
	sql, _, err := buildSelect(catalog, repository.Query{Collection: "grupos", Limit: 1})
	require.NoError(t, err)
	assert.Contains(t, sql, `ORDER BY "id" ASC LIMIT $1`)
}

func TestBuildSelect_InExpandeParametros(t *testing.T) {
	sql, args, err := buildSelect(catalog, repository.Query{
		Collection: "clientes",
		Filters: []repository.Filter{
			repository.Eq("empresa_id", "e1"),
			repository.In("id", []any{"k1", "k2"}),
		},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `WHERE "empresa_id" = $1 AND "id" IN ($2, $3)`)
	assert.Equal(t, []any{"e1", "k1", "k2"}, args)
}

func TestBuildSelect_InVacioNoDevuelveNada(t *testing.T) {
	sql, args, err := buildSelect(catalog, repository.Query{
		Collection: "clientes",
		Filters:    []repository.Filter{repository.In("id", []any{}), repository.Eq("empresa_id", "e1")},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `WHERE FALSE AND "empresa_id" = $1`)
	assert.Equal(t, []any{"e1"}, args)
}

func TestBuildSelect_RechazaIdentificadoresNoDeclarados(t *testing.T) {
	cases := []repository.Query{
		{Collection: "pg_user"},
		{Collection: "grupos", Filters: []repository.Filter{repository.Eq(`estado" OR 1=1 --`, "x")}},
		{Collection: "grupos", OrderBy: []repository.Order{{Field: "password"}}},
		{Collection: "grupos", Filters: []repository.Filter{{Field: "estado", Op: "like", Value: "%"}}},
		{Collection: "grupos", Filters: []repository.Filter{{Field: "estado", Op: repository.OpIn, Value: "a,b"}}},
	}
	for _, q := range cases {
		_, _, err := buildSelect(catalog, q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", q)
	}
}

// ── Escritura ─────────────────────────────────────────────────────────────────

func TestBuildInsert_ColumnasOrdenadasYReturning(t *testing.T) {
	sql, args, err := buildInsert(catalog, "tareas", entity.Record{
		"titulo": "Llamar", "empresa_id": "e1", "comercial_id": "c1",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "tareas" ("comercial_id", "empresa_id", "titulo") VALUES ($1, $2, $3)`+
			` RETURNING "id", "empresa_id", "created_at", "comercial_id", "cliente_id", "titulo", "estado", "prioridad", "fecha_vencimiento"`, sql)
	assert.Equal(t, []any{"c1", "e1", "Llamar"}, args)

	_, _, err = buildInsert(catalog, "tareas", entity.Record{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildUpdate_NumeraFiltrosTrasLosValores(t *testing.T) {
	sql, args, err := buildUpdate(catalog, "tareas",
		entity.Record{"estado": "completada", "prioridad": "alta"},
		[]repository.Filter{repository.Eq("id", "t1"), repository.Eq("empresa_id", "e1")},
	)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "tareas" SET "estado" = $1, "prioridad" = $2 WHERE "id" = $3 AND "empresa_id" = $4`, sql)
	assert.Equal(t, []any{"completada", "alta", "t1", "e1"}, args)
}

func TestBuildUpdateYDelete_ExigenFiltros(t *testing.T) {
	_, _, err := buildUpdate(catalog, "tareas", entity.Record{"estado": "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = buildDelete(catalog, "tareas", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sql, args, err := buildDelete(catalog, "tareas", []repository.Filter{repository.Eq("id", "t1")})
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "tareas" WHERE "id" = $1`, sql)
	assert.Equal(t, []any{"t1"}, args)
}

// ── Lectura ───────────────────────────────────────────────────────────────────

func TestNormalizeValue(t *testing.T) {
	raw := [16]byte{0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11}
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", normalizeValue(pgtype.UUIDOID, raw))

	d := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-15", normalizeValue(pgtype.DateOID, d))
	assert.Equal(t, d, normalizeValue(pgtype.TimestamptzOID, d))
	assert.Nil(t, normalizeValue(pgtype.TextOID, nil))
	assert.Equal(t, "x", normalizeValue(pgtype.TextOID, "x"))
}
