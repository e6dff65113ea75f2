package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/testutil"
)

const csvEmpresas = `nombre;cif;direccion;telefono;email;iso_desde;iso_hasta
Formación Íbera SL;b-12345678;C/ Mayor 1;910000000;Info@Ibera.es;01/01/2024;2024-12-31
Consultoría O'Neill SA;A87654321;;;;;
;X00000000;;;;;
`

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestParseCSV_DecodificaLatin1YNormaliza(t *testing.T) {
	in := transform.NewReader(bytes.NewReader(latin1(t, csvEmpresas)), charmap.ISO8859_1.NewDecoder())
	seeds, err := parseCSV(in)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	ibera := seeds[0]
	assert.Equal(t, "Formación Íbera SL", ibera.Nombre)
	assert.Equal(t, "B12345678", ibera.CIF)
	assert.Equal(t, "info@ibera.es", ibera.Email)
	require.True(t, ibera.HasISO())
	assert.Equal(t, "2024-01-01", ibera.ISODesde.Format("2006-01-02"))
	assert.Equal(t, "2024-12-31", ibera.ISOHasta.Format("2006-01-02"))
	assert.NotEmpty(t, ibera.ID)

	assert.False(t, seeds[1].HasISO())
}

func TestParseCSV_Errores(t *testing.T) {
	cases := map[string]string{
		"vacío":             "",
		"sin cif":           "nombre;telefono\nA;1\n",
		"cif repetido":      "nombre;cif\nA;B1\nB;b-1\n",
		"fecha inválida":    "nombre;cif;iso_desde\nA;B1;31/02/2024x\n",
		"ventana invertida": "nombre;cif;iso_desde;iso_hasta\nA;B1;2024-06-01;2024-01-01\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestWriteSQL_EscapaComillasYActivaISO(t *testing.T) {
	seeds, err := parseCSV(strings.NewReader(csvEmpresas))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeSQL(&buf, seeds))
	sql := buf.String()

	assert.Contains(t, sql, "'Consultoría O''Neill SA'")
	assert.Contains(t, sql, "NULL, NULL, NULL, 'active'")
	assert.Equal(t, 1, strings.Count(sql, "INSERT INTO company_modules"))
	assert.Contains(t, sql, "'iso', TRUE, '2024-01-01', '2024-12-31' FROM empresas WHERE cif = 'B12345678'")
	assert.True(t, strings.HasPrefix(sql, "-- Empresas"))
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}

// memTx ejecuta fn directamente sobre repositorios en memoria.
type memTx struct {
	records   *testutil.MemRepo
	companies *testutil.CompanyRepo
}

func (m memTx) Run(_ context.Context, fn func(repository.RecordRepository, repository.CompanyRepository) error) error {
	return fn(m.records, m.companies)
}

func TestInsertSeeds_EmpresasYModuloISO(t *testing.T) {
	seeds, err := parseCSV(strings.NewReader(csvEmpresas))
	require.NoError(t, err)
	tx := memTx{records: testutil.NewMemRepo(nil), companies: testutil.NewCompanyRepo()}

	require.NoError(t, insertSeeds(context.Background(), tx, seeds))

	rows := tx.records.Rows("empresas")
	require.Len(t, rows, 2)
	assert.Equal(t, "B12345678", rows[0]["cif"])
	assert.Equal(t, "active", rows[0]["estado"])
	_, hasPhone := rows[1]["telefono"]
	assert.False(t, hasPhone)

	m := tx.companies.Modules[seeds[0].ID+"/iso"]
	require.NotNil(t, m)
	assert.True(t, m.IsActive)
	assert.Len(t, tx.companies.Modules, 1)
}

func TestInsertSeeds_PropagaElError(t *testing.T) {
	seeds, err := parseCSV(strings.NewReader(csvEmpresas))
	require.NoError(t, err)
	boom := errors.New("db caída")
	repo := testutil.NewMemRepo(nil)
	repo.Err = boom

	err = insertSeeds(context.Background(), memTx{records: repo, companies: testutil.NewCompanyRepo()}, seeds)
	assert.ErrorIs(t, err, boom)
}
