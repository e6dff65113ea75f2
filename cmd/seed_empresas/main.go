// seed_empresas genera el SQL de alta de empresas (y su módulo ISO) a partir de un CSV
// exportado de la hoja de clientes, separado por ';' y en ISO-8859-1.
//
// Uso: go run ./cmd/seed_empresas [-utf8] [-out ruta.sql] [-apply] empresas.csv
//
// Columnas: nombre;cif;direccion;telefono;email;iso_desde;iso_hasta
// Las fechas aceptan 2006-01-02 o 02/01/2006. Sin iso_desde ni iso_hasta no se activa ISO.
//
// Con -apply, además de escribir el SQL, inserta las empresas en la base de datos
// configurada (DATABASE_URL / DB_*) en una única transacción.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Gestion-api/pkg/config"
	"github.com/jhoicas/Gestion-api/pkg/logger"
)

func main() {
	utf8 := flag.Bool("utf8", false, "el CSV ya está en UTF-8")
	outPath := flag.String("out", "", "archivo SQL de salida (por defecto stdout)")
	apply := flag.Bool("apply", false, "insertar en la base de datos configurada")
	flag.Parse()

	csvPath := "empresas.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if !*utf8 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	seeds, err := parseCSV(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
	}
	if err := writeSQL(out, seeds); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	if *apply {
		if err := applySeeds(seeds); err != nil {
			fmt.Fprintf(os.Stderr, "Aplicar: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "Procesadas %d empresas desde %s\n", len(seeds), csvPath)
}

func applySeeds(seeds []empresaSeed) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	return insertSeeds(ctx, postgres.NewTxRunner(pool, access.DefaultCatalog()), seeds)
}
