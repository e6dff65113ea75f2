package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// empresaSeed una fila del CSV ya normalizada.
type empresaSeed struct {
	ID        string
	Nombre    string
	CIF       string
	Direccion string
	Telefono  string
	Email     string
	ISODesde  *time.Time
	ISOHasta  *time.Time
}

// HasISO informa si la fila trae ventana de vigencia del módulo ISO.
func (s empresaSeed) HasISO() bool { return s.ISODesde != nil || s.ISOHasta != nil }

var csvHeader = []string{"nombre", "cif", "direccion", "telefono", "email", "iso_desde", "iso_hasta"}

// parseCSV lee el CSV (ya en UTF-8). La cabecera es obligatoria; las filas sin nombre se omiten.
// Los CIF repetidos son un error: la tabla empresas no los admite.
func parseCSV(r io.Reader) ([]empresaSeed, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("CSV vacío")
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range csvHeader[:2] {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("falta la columna %q en la cabecera", col)
		}
	}

	var out []empresaSeed
	seen := make(map[string]int)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("nombre") == "" {
			continue
		}
		s := empresaSeed{
			ID:        uuid.New().String(),
			Nombre:    get("nombre"),
			CIF:       strings.ToUpper(strings.ReplaceAll(get("cif"), "-", "")),
			Direccion: get("direccion"),
			Telefono:  get("telefono"),
			Email:     strings.ToLower(get("email")),
		}
		if s.CIF == "" {
			return nil, fmt.Errorf("línea %d: CIF vacío para %q", line, s.Nombre)
		}
		if prev, dup := seen[s.CIF]; dup {
			return nil, fmt.Errorf("línea %d: CIF %s repetido (línea %d)", line, s.CIF, prev)
		}
		seen[s.CIF] = line

		if s.ISODesde, err = parseDay(get("iso_desde")); err != nil {
			return nil, fmt.Errorf("línea %d: iso_desde: %w", line, err)
		}
		if s.ISOHasta, err = parseDay(get("iso_hasta")); err != nil {
			return nil, fmt.Errorf("línea %d: iso_hasta: %w", line, err)
		}
		if s.ISODesde != nil && s.ISOHasta != nil && s.ISOHasta.Before(*s.ISODesde) {
			return nil, fmt.Errorf("línea %d: iso_hasta anterior a iso_desde", line)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, ok := entity.ParseDate(s)
	if !ok {
		return nil, fmt.Errorf("fecha %q no válida", s)
	}
	day := entity.CalendarDay(d, time.UTC)
	return &day, nil
}

// writeSQL emite un INSERT por empresa y, si procede, la activación del módulo ISO.
func writeSQL(w io.Writer, seeds []empresaSeed) error {
	var b strings.Builder
	b.WriteString("-- Empresas generadas por seed_empresas\n")
	b.WriteString("BEGIN;\n\n")
	for _, s := range seeds {
		fmt.Fprintf(&b, "INSERT INTO empresas (id, nombre, cif, direccion, telefono, email, estado)\n")
		fmt.Fprintf(&b, "VALUES ('%s', %s, %s, %s, %s, %s, 'active')\n",
			s.ID, quote(s.Nombre), quote(s.CIF), nullable(s.Direccion), nullable(s.Telefono), nullable(s.Email))
		b.WriteString("ON CONFLICT (cif) DO NOTHING;\n")
		if s.HasISO() {
			fmt.Fprintf(&b, "INSERT INTO company_modules (company_id, module_name, is_active, activated_on, expires_on)\n")
			fmt.Fprintf(&b, "SELECT id, 'iso', TRUE, %s, %s FROM empresas WHERE cif = %s\n",
				dayLiteral(s.ISODesde), dayLiteral(s.ISOHasta), quote(s.CIF))
			b.WriteString("ON CONFLICT (company_id, module_name) DO UPDATE SET is_active = EXCLUDED.is_active,\n")
			b.WriteString("  activated_on = EXCLUDED.activated_on, expires_on = EXCLUDED.expires_on, updated_at = NOW();\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// txRunner ejecuta fn con repositorios atados a una transacción (postgres.TxRunner).
type txRunner interface {
	Run(ctx context.Context, fn func(records repository.RecordRepository, companies repository.CompanyRepository) error) error
}

// insertSeeds inserta todas las empresas en una transacción; cualquier fallo deshace el lote.
func insertSeeds(ctx context.Context, tx txRunner, seeds []empresaSeed) error {
	return tx.Run(ctx, func(records repository.RecordRepository, companies repository.CompanyRepository) error {
		for _, s := range seeds {
			row := entity.Record{
				"id":     s.ID,
				"nombre": s.Nombre,
				"cif":    s.CIF,
				"estado": "active",
			}
			for col, v := range map[string]string{"direccion": s.Direccion, "telefono": s.Telefono, "email": s.Email} {
				if v != "" {
					row[col] = v
				}
			}
			if _, err := records.Insert(ctx, "empresas", row); err != nil {
				return fmt.Errorf("empresa %s: %w", s.CIF, err)
			}
			if !s.HasISO() {
				continue
			}
			if err := companies.UpsertModule(ctx, &entity.CompanyModule{
				CompanyID:   s.ID,
				ModuleName:  entity.ModuleISO,
				IsActive:    true,
				ActivatedOn: s.ISODesde,
				ExpiresOn:   s.ISOHasta,
			}); err != nil {
				return fmt.Errorf("módulo ISO de %s: %w", s.CIF, err)
			}
		}
		return nil
	})
}

func quote(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return quote(s)
}

func dayLiteral(t *time.Time) string {
	if t == nil {
		return "NULL"
	}
	return "'" + t.Format("2006-01-02") + "'"
}
