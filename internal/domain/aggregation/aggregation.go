// Package aggregation reduce filas ya filtradas por alcance a los valores que muestran
// los paneles: conteos, series por mes/año, rankings y vencimientos próximos.
//
// Todas las funciones son puras: no guardan estado entre llamadas y el resultado no
// depende del orden de las filas de entrada. Una fecha no interpretable excluye la fila
// afectada y nunca hace fallar la agregación completa.
package aggregation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// MetricFn función de agregación.
type MetricFn string

const (
	Count MetricFn = "COUNT"
	Sum   MetricFn = "SUM"
)

// Granularity truncado de fecha para los buckets.
type Granularity string

const (
	Month Granularity = "MONTH"
	Year  Granularity = "YEAR"
)

// DefaultWindowDays ventana de urgencia por defecto.
const DefaultWindowDays = 30

// ParseMetricFn interpreta el nombre (sin distinguir mayúsculas).
func ParseMetricFn(s string) (MetricFn, error) {
	switch fn := MetricFn(strings.ToUpper(strings.TrimSpace(s))); fn {
	case Count, Sum:
		return fn, nil
	}
	return "", fmt.Errorf("%w: función %q", domain.ErrAggregationInput, s)
}

// ParseGranularity interpreta el nombre (sin distinguir mayúsculas).
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToUpper(strings.TrimSpace(s))); g {
	case Month, Year:
		return g, nil
	}
	return "", fmt.Errorf("%w: granularidad %q", domain.ErrAggregationInput, s)
}

// Bucket valor agregado de un periodo (YYYY-MM o YYYY).
type Bucket struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Ranked valor agregado de un grupo.
type Ranked struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

// Urgency fila con un vencimiento dentro de la ventana.
type Urgency struct {
	Record   entity.Record `json:"record"`
	Field    string        `json:"field"`    // campo de vencimiento que coincidió
	Deadline time.Time     `json:"deadline"` // fecha de ese campo
	DaysLeft int           `json:"days_left"`
}

// CountBy cuenta las filas cuyo campo es igual a value. Las filas sin el campo no cuentan.
// Si value es numérico y el campo llega como número (NUMERIC, INT), se compara por valor:
// "40.50" coincide con 40.5. Las columnas de texto se comparan siempre como texto.
func CountBy(rows []entity.Record, field string, value any) int {
	want := fmt.Sprint(value)
	wantNum, numeric := entity.Record{field: value}.Decimal(field)
	n := 0
	for _, r := range rows {
		if numeric {
			if _, isText := r[field].(string); !isText {
				if got, ok := r.Decimal(field); ok {
					if got.Equal(wantNum) {
						n++
					}
					continue
				}
			}
		}
		if got, ok := r.Text(field); ok && got == want {
			n++
		}
	}
	return n
}

// BucketByTime agrupa por mes o año del campo de fecha, tomado en loc, y aplica fn.
// Filas sin fecha válida quedan fuera de todos los buckets. Salida ordenada por clave.
func BucketByTime(rows []entity.Record, dateField string, g Granularity, metricField string, fn MetricFn, loc *time.Location) ([]Bucket, error) {
	layout, err := bucketLayout(g)
	if err != nil {
		return nil, err
	}
	if err := checkFn(fn, metricField); err != nil {
		return nil, err
	}

	acc := make(map[string]decimal.Decimal)
	for _, r := range rows {
		d, ok := r.Day(dateField, loc)
		if !ok {
			continue
		}
		key := d.Format(layout)
		acc[key] = acc[key].Add(metricValue(r, metricField, fn))
	}

	out := make([]Bucket, 0, len(acc))
	for k, v := range acc {
		out = append(out, Bucket{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// RankBy agrupa por groupField, aplica fn sobre metricField y ordena de mayor a menor.
// Los empates se resuelven por clave ascendente. Filas sin grupo quedan fuera.
func RankBy(rows []entity.Record, groupField, metricField string, fn MetricFn) ([]Ranked, error) {
	if err := checkFn(fn, metricField); err != nil {
		return nil, err
	}

	acc := make(map[string]decimal.Decimal)
	for _, r := range rows {
		key, ok := r.Text(groupField)
		if !ok {
			continue
		}
		acc[key] = acc[key].Add(metricValue(r, metricField, fn))
	}

	out := make([]Ranked, 0, len(acc))
	for k, v := range acc {
		out = append(out, Ranked{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// FindUrgent devuelve, por cada fila, el primer campo de deadlineFields (en orden de
// prioridad) cuya fecha cae en [today, today+windowDays]. Gana la prioridad, no la cercanía.
// Los instantes se comparan por su día en la zona de today. El resultado conserva el
// orden de las filas de entrada.
func FindUrgent(rows []entity.Record, deadlineFields []string, today time.Time, windowDays int) []Urgency {
	if windowDays < 0 {
		windowDays = 0
	}
	loc := today.Location()
	start := entity.CalendarDay(today, loc)
	end := start.AddDate(0, 0, windowDays)

	out := make([]Urgency, 0)
	for _, r := range rows {
		for _, f := range deadlineFields {
			day, ok := r.Day(f, loc)
			if !ok {
				continue
			}
			if day.Before(start) || day.After(end) {
				continue
			}
			out = append(out, Urgency{
				Record:   r,
				Field:    f,
				Deadline: day,
				DaysLeft: daysBetween(start, day),
			})
			break
		}
	}
	return out
}

// Total suma metricField en todas las filas (COUNT = número de filas).
func Total(rows []entity.Record, metricField string, fn MetricFn) (decimal.Decimal, error) {
	if err := checkFn(fn, metricField); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(metricValue(r, metricField, fn))
	}
	return total, nil
}

func bucketLayout(g Granularity) (string, error) {
	switch g {
	case Month:
		return "2006-01", nil
	case Year:
		return "2006", nil
	}
	return "", fmt.Errorf("%w: granularidad %q", domain.ErrAggregationInput, g)
}

func checkFn(fn MetricFn, metricField string) error {
	switch fn {
	case Count:
		return nil
	case Sum:
		if metricField == "" {
			return fmt.Errorf("%w: SUM requiere campo métrico", domain.ErrAggregationInput)
		}
		return nil
	}
	return fmt.Errorf("%w: función %q", domain.ErrAggregationInput, fn)
}

// metricValue aporte de una fila: 1 para COUNT; el valor (o 0 si falta) para SUM.
func metricValue(r entity.Record, field string, fn MetricFn) decimal.Decimal {
	if fn == Count {
		return decimal.NewFromInt(1)
	}
	v, ok := r.Decimal(field)
	if !ok {
		return decimal.Zero
	}
	return v
}

// daysBetween días naturales entre dos medianoches de la misma zona (tolera cambios de hora).
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
