package aggregation_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/aggregation"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// CountBy
// ──────────────────────────────────────────────────────────────────────────────

func TestCountBy_CuentaCoincidenciasEIgnoraFaltantes(t *testing.T) {
	rows := []entity.Record{
		{"estado": "activo"},
		{"estado": "baja"},
		{"estado": "activo"},
		{"nombre": "sin estado"},
		{"estado": nil},
	}
	assert.Equal(t, 2, aggregation.CountBy(rows, "estado", "activo"))
	assert.Equal(t, 0, aggregation.CountBy(rows, "estado", "pendiente"))
}

func TestCountBy_ValoresNoTextuales(t *testing.T) {
	rows := []entity.Record{{"horas": 20}, {"horas": int64(20)}, {"horas": 30}}
	assert.Equal(t, 2, aggregation.CountBy(rows, "horas", 20))
}

func TestCountBy_NumericoComparaPorValor(t *testing.T) {
	rows := []entity.Record{
		{"horas": decimal.RequireFromString("40.5")},
		{"horas": 40.5},
		{"horas": int64(40)},
		{"horas": nil},
	}
	assert.Equal(t, 2, aggregation.CountBy(rows, "horas", "40.50"))
	assert.Equal(t, 2, aggregation.CountBy(rows, "horas", "40.5"))
	assert.Equal(t, 1, aggregation.CountBy(rows, "horas", decimal.RequireFromString("40.00")))
}

func TestCountBy_TextoNumericoSigueSiendoTexto(t *testing.T) {
	rows := []entity.Record{{"cp": "08001"}, {"cp": "8001"}}
	assert.Equal(t, 1, aggregation.CountBy(rows, "cp", "08001"))
}

// ──────────────────────────────────────────────────────────────────────────────
// BucketByTime
// ──────────────────────────────────────────────────────────────────────────────

func TestBucketByTime_ExcluyeFechasNulasOInvalidas(t *testing.T) {
	rows := []entity.Record{
		{"date": "2024-01-15", "amt": 100},
		{"date": nil, "amt": 50},
		{"date": "bad", "amt": 25},
	}
	out, err := aggregation.BucketByTime(rows, "date", aggregation.Month, "amt", aggregation.Sum, time.UTC)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2024-01", out[0].Key)
	assert.True(t, out[0].Value.Equal(dec(100)), out[0].Value.String())
}

func TestBucketByTime_CountPorMesOrdenado(t *testing.T) {
	rows := []entity.Record{
		{"fecha": "2024-03-02"},
		{"fecha": day("2024-01-31")},
		{"fecha": "2024-01-01T10:00:00Z"},
		{"fecha": "15/03/2024"},
		{"fecha": "2023-12-31 23:00:00"},
	}
	out, err := aggregation.BucketByTime(rows, "fecha", aggregation.Month, "", aggregation.Count, time.UTC)
	require.NoError(t, err)

	keys := make([]string, 0, len(out))
	for _, b := range out {
		keys = append(keys, b.Key)
	}
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-03"}, keys)
	assert.True(t, out[1].Value.Equal(dec(2)))
	assert.True(t, out[2].Value.Equal(dec(2)))
}

func TestBucketByTime_PorAnioSumaConMetricaFaltanteComoCero(t *testing.T) {
	rows := []entity.Record{
		{"fecha": "2023-05-01", "importe": "10.50"},
		{"fecha": "2023-07-01"},
		{"fecha": "2024-01-01", "importe": decimal.RequireFromString("4.25")},
		{"fecha": "2024-02-01", "importe": 0.75},
	}
	out, err := aggregation.BucketByTime(rows, "fecha", aggregation.Year, "importe", aggregation.Sum, time.UTC)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2023", out[0].Key)
	assert.Equal(t, "10.5", out[0].Value.String())
	assert.Equal(t, "2024", out[1].Key)
	assert.Equal(t, "5", out[1].Value.String())
}

func TestBucketByTime_InvariantePermutacion(t *testing.T) {
	rows := []entity.Record{
		{"f": "2024-01-10", "v": 1},
		{"f": "2024-02-10", "v": 2},
		{"f": "2024-02-11", "v": 3},
		{"f": "2023-11-30", "v": 4},
		{"f": "x", "v": 5},
		{"f": "2024-01-01", "v": 6},
	}
	want, err := aggregation.BucketByTime(rows, "f", aggregation.Month, "v", aggregation.Sum, time.UTC)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]entity.Record(nil), rows...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, err := aggregation.BucketByTime(shuffled, "f", aggregation.Month, "v", aggregation.Sum, time.UTC)
		require.NoError(t, err)
		require.Equal(t, len(want), len(got))
		for j := range want {
			assert.Equal(t, want[j].Key, got[j].Key)
			assert.True(t, want[j].Value.Equal(got[j].Value))
		}
	}
}

func TestBucketByTime_EntradaInvalida(t *testing.T) {
	rows := []entity.Record{{"f": "2024-01-01"}}

	_, err := aggregation.BucketByTime(rows, "f", "WEEK", "", aggregation.Count, time.UTC)
	assert.ErrorIs(t, err, domain.ErrAggregationInput)

	_, err = aggregation.BucketByTime(rows, "f", aggregation.Month, "v", "AVG", time.UTC)
	assert.ErrorIs(t, err, domain.ErrAggregationInput)

	_, err = aggregation.BucketByTime(rows, "f", aggregation.Month, "", aggregation.Sum, time.UTC)
	assert.ErrorIs(t, err, domain.ErrAggregationInput)
}

func TestBucketByTime_InstantesEnLaZonaIndicada(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*3600)
	rows := []entity.Record{
		{"created_at": time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC)}, // 1 de junio en Madrid
		{"created_at": "2024-05-31T22:15:00Z"},                         // 1 de junio en Madrid
		{"created_at": "2024-05-31"},                                   // DATE: conserva su día
	}
	out, err := aggregation.BucketByTime(rows, "created_at", aggregation.Month, "", aggregation.Count, madrid)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-05", out[0].Key)
	assert.True(t, out[0].Value.Equal(dec(1)))
	assert.Equal(t, "2024-06", out[1].Key)
	assert.True(t, out[1].Value.Equal(dec(2)))
}

// ──────────────────────────────────────────────────────────────────────────────
// RankBy
// ──────────────────────────────────────────────────────────────────────────────

func TestRankBy_DescendenteConDesempatePorClave(t *testing.T) {
	rows := []entity.Record{
		{"g": "C", "v": 100},
		{"g": "B", "v": 200},
		{"g": "A", "v": 150},
		{"g": "B", "v": 100},
		{"g": "A", "v": 150},
		{"v": 999},
	}
	out, err := aggregation.RankBy(rows, "g", "v", aggregation.Sum)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Key)
	assert.True(t, out[0].Value.Equal(dec(300)))
	assert.Equal(t, "B", out[1].Key)
	assert.True(t, out[1].Value.Equal(dec(300)))
	assert.Equal(t, "C", out[2].Key)
	assert.True(t, out[2].Value.Equal(dec(100)))
}

func TestRankBy_Count(t *testing.T) {
	rows := []entity.Record{{"g": "x"}, {"g": "y"}, {"g": "y"}}
	out, err := aggregation.RankBy(rows, "g", "", aggregation.Count)
	require.NoError(t, err)
	assert.Equal(t, "y", out[0].Key)
	assert.True(t, out[0].Value.Equal(dec(2)))
}

func TestRankBy_FuncionDesconocida(t *testing.T) {
	_, err := aggregation.RankBy(nil, "g", "v", "MAX")
	assert.ErrorIs(t, err, domain.ErrAggregationInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// FindUrgent
// ──────────────────────────────────────────────────────────────────────────────

func TestFindUrgent_GanaLaPrioridadNoLaCercania(t *testing.T) {
	today := day("2024-06-01")
	rows := []entity.Record{
		{"id": "g1", "fecha_fin": "2024-06-15", "fecha_justificacion": "2024-06-10"},
	}
	out := aggregation.FindUrgent(rows, []string{"fecha_fin", "fecha_justificacion"}, today, 30)
	require.Len(t, out, 1)
	assert.Equal(t, "fecha_fin", out[0].Field)
	assert.Equal(t, 14, out[0].DaysLeft)
}

func TestFindUrgent_UsaSiguienteCampoSiElPrimeroNoEstaEnVentana(t *testing.T) {
	today := day("2024-06-01")
	rows := []entity.Record{
		{"id": "g1", "fecha_fin": "2024-09-01", "fecha_justificacion": "2024-06-20"},
		{"id": "g2", "fecha_fin": "no es fecha", "fecha_justificacion": "2024-06-01"},
	}
	out := aggregation.FindUrgent(rows, []string{"fecha_fin", "fecha_justificacion"}, today, 30)
	require.Len(t, out, 2)
	assert.Equal(t, "fecha_justificacion", out[0].Field)
	assert.Equal(t, "fecha_justificacion", out[1].Field)
	assert.Equal(t, 0, out[1].DaysLeft)
}

func TestFindUrgent_VentanaInclusivaYExclusiones(t *testing.T) {
	today := day("2024-06-01")
	rows := []entity.Record{
		{"id": "limite", "fecha": "2024-07-01"},  // hoy + 30: dentro
		{"id": "fuera", "fecha": "2024-07-02"},   // hoy + 31: fuera
		{"id": "pasada", "fecha": "2024-05-31"},  // ayer: fuera
		{"id": "sin", "otra": "2024-06-02"},      // sin campo
		{"id": "hoy", "fecha": "2024-06-01T18:30:00Z"},
	}
	out := aggregation.FindUrgent(rows, []string{"fecha"}, today, 30)
	ids := make([]string, 0, len(out))
	for _, u := range out {
		id, _ := u.Record.Text("id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"limite", "hoy"}, ids)
}

func TestFindUrgent_InstanteSeComparaEnLaZonaDeHoy(t *testing.T) {
	madrid := time.FixedZone("CEST", 2*3600)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, madrid)
	rows := []entity.Record{
		{"id": "ts", "fecha": time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC)},  // 01:30 del 1 de junio
		{"id": "ayer", "fecha": time.Date(2024, 5, 31, 21, 0, 0, 0, time.UTC)}, // 23:00 del 31 de mayo
		{"id": "fecha", "fecha": "2024-06-01"},
	}
	out := aggregation.FindUrgent(rows, []string{"fecha"}, today, 30)
	require.Len(t, out, 2)
	id, _ := out[0].Record.Text("id")
	assert.Equal(t, "ts", id)
	assert.Equal(t, 0, out[0].DaysLeft)
	assert.Equal(t, today, out[0].Deadline)
	id, _ = out[1].Record.Text("id")
	assert.Equal(t, "fecha", id)
}

// ──────────────────────────────────────────────────────────────────────────────
// Entrada vacía
// ──────────────────────────────────────────────────────────────────────────────

func TestAgregaciones_EntradaVaciaSinError(t *testing.T) {
	assert.Equal(t, 0, aggregation.CountBy(nil, "estado", "x"))

	b, err := aggregation.BucketByTime(nil, "f", aggregation.Month, "v", aggregation.Sum, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.NotNil(t, b)

	r, err := aggregation.RankBy([]entity.Record{}, "g", "v", aggregation.Sum)
	require.NoError(t, err)
	assert.Empty(t, r)

	u := aggregation.FindUrgent(nil, []string{"f"}, day("2024-01-01"), 30)
	assert.Empty(t, u)
	assert.NotNil(t, u)

	total, err := aggregation.Total(nil, "v", aggregation.Sum)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestParseMetricFnYGranularity(t *testing.T) {
	fn, err := aggregation.ParseMetricFn(" sum ")
	require.NoError(t, err)
	assert.Equal(t, aggregation.Sum, fn)

	g, err := aggregation.ParseGranularity("year")
	require.NoError(t, err)
	assert.Equal(t, aggregation.Year, g)

	_, err = aggregation.ParseMetricFn("median")
	assert.ErrorIs(t, err, domain.ErrAggregationInput)
	_, err = aggregation.ParseGranularity("")
	assert.ErrorIs(t, err, domain.ErrAggregationInput)
}
