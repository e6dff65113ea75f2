package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record fila de cualquier colección con ámbito (empresa, participante, oportunidad, ...).
// Los campos son opcionales: los accesores devuelven (valor, ok) y ok=false significa
// ausente, nulo o no interpretable.
type Record map[string]any

// Formatos de fecha aceptados, en orden de prueba.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07",
	"02/01/2006",
}

// Text devuelve el campo como texto. Valores no textuales se formatean con fmt.
func (r Record) Text(field string) (string, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// Date interpreta el campo como fecha.
func (r Record) Date(field string) (time.Time, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	return ParseDate(v)
}

// Day devuelve el día natural del campo en loc (ver LocalDay).
func (r Record) Day(field string, loc *time.Location) (time.Time, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	return LocalDay(v, loc)
}

// Decimal interpreta el campo como número.
func (r Record) Decimal(field string) (decimal.Decimal, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// ParseDate convierte time.Time, *time.Time o texto a fecha. ok=false si no es interpretable.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// civilLayouts formatos de texto sin zona: fechas DATE o marcas sin instante asociado.
var civilLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// LocalDay devuelve la medianoche en loc del día natural de v.
// Un instante (time.Time o texto con zona, p. ej. TIMESTAMPTZ) se pasa a loc antes de truncar;
// un texto sin zona conserva su día. El repositorio entrega las columnas DATE como texto.
func LocalDay(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range civilLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return CalendarDay(d, loc), true
			}
		}
	}
	t, ok := ParseDate(v)
	if !ok {
		return time.Time{}, false
	}
	return CalendarDay(t.In(loc), loc), true
}

// Clone copia superficial de la fila.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
