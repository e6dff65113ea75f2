package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Gestion-api/pkg/config"
)

// NewPool crea el pool de conexiones a la base de datos de gestión.
// Con ForceIPv4 el host (de DATABASE_URL o DB_HOST) se resuelve a IPv4 y el dial usa tcp4.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := cfg.ConnectionString()
	var v4 *ipv4Resolver
	if cfg.ForceIPv4 {
		v4 = &ipv4Resolver{fallbackDNS: cfg.FallbackDNS}
		dsn = v4.rewriteURL(ctx, dsn)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if v4 != nil {
		poolConfig.ConnConfig.DialFunc = v4.dial
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// NUMERIC (importes, presupuestos) -> shopspring/decimal en todas las conexiones.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Int32("max_conns", poolConfig.MaxConns).
		Bool("ipv4", v4 != nil).
		Msg("pool PostgreSQL listo")
	return pool, nil
}

// ── IPv4 ──────────────────────────────────────────────────────────────────────

var errNoIPv4 = errors.New("sin dirección IPv4")

// ipv4Resolver fuerza conexiones IPv4 en contenedores sin salida IPv6. Si el DNS del sistema
// solo devuelve AAAA se consulta fallbackDNS (host:puerto); vacío desactiva el reintento.
type ipv4Resolver struct {
	fallbackDNS string
}

func (r *ipv4Resolver) lookup(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s: %w", host, errNoIPv4)
	}
	ip, err := firstIPv4(ctx, net.DefaultResolver, host)
	if err == nil || r.fallbackDNS == "" {
		return ip, err
	}
	fallback := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", r.fallbackDNS)
		},
	}
	return firstIPv4(ctx, fallback, host)
}

func firstIPv4(ctx context.Context, res *net.Resolver, host string) (string, error) {
	ips, err := res.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("%s: %w", host, errNoIPv4)
}

// dial DialFunc de pgx: conecta por tcp4 cuando hay IPv4 y si no cae al dial normal.
func (r *ipv4Resolver) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := r.lookup(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// rewriteURL sustituye el host de un DSN en formato URL por su IPv4. Los DSN clave=valor
// y los hosts sin IPv4 se devuelven sin cambios.
func (r *ipv4Resolver) rewriteURL(ctx context.Context, dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") || u.Hostname() == "" {
		return dsn
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ip, err := r.lookup(ctx, u.Hostname())
	if err != nil {
		return dsn
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}
