package analytics

import (
	"fmt"
	"time"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain/aggregation"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func toBucketDTOs(in []aggregation.Bucket) []dto.BucketDTO {
	out := make([]dto.BucketDTO, 0, len(in))
	for _, b := range in {
		out = append(out, dto.BucketDTO{Key: b.Key, Value: b.Value})
	}
	return out
}

// toRankedDTOs numera desde 1 y recorta a top (0 = sin recorte).
func toRankedDTOs(in []aggregation.Ranked, top int) []dto.RankedDTO {
	if top > 0 && len(in) > top {
		in = in[:top]
	}
	out := make([]dto.RankedDTO, 0, len(in))
	for i, r := range in {
		out = append(out, dto.RankedDTO{Rank: i + 1, Key: r.Key, Value: r.Value})
	}
	return out
}

func toUrgentDTOs(in []aggregation.Urgency) []dto.UrgentItemDTO {
	out := make([]dto.UrgentItemDTO, 0, len(in))
	for _, u := range in {
		out = append(out, dto.UrgentItemDTO{
			Record:   u.Record,
			Field:    u.Field,
			Deadline: u.Deadline.Format(dateLayout),
			DaysLeft: u.DaysLeft,
		})
	}
	return out
}

// where filas con field = value.
func where(rows []entity.Record, field, value string) []entity.Record {
	out := make([]entity.Record, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Text(field); ok && v == value {
			out = append(out, r)
		}
	}
	return out
}

// whereNot filas con field distinto de value o sin valor.
func whereNot(rows []entity.Record, field, value string) []entity.Record {
	out := make([]entity.Record, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Text(field); !ok || v != value {
			out = append(out, r)
		}
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
