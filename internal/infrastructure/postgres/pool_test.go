package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPv4Resolver_LiteralesSinDNS(t *testing.T) {
	r := &ipv4Resolver{}
	ctx := context.Background()

	ip, err := r.lookup(ctx, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = r.lookup(ctx, "::1")
	assert.ErrorIs(t, err, errNoIPv4)
}

func TestIPv4Resolver_RewriteURL(t *testing.T) {
	r := &ipv4Resolver{}
	ctx := context.Background()

	assert.Equal(t,
		"postgres://u:p@10.0.0.7:5432/gestion?sslmode=disable",
		r.rewriteURL(ctx, "postgres://u:p@10.0.0.7/gestion?sslmode=disable"),
		"sin puerto se completa el 5432")

	ipv6 := "postgresql://u:p@[::1]:6543/gestion"
	assert.Equal(t, ipv6, r.rewriteURL(ctx, ipv6))

	kv := "host=db user=u dbname=gestion"
	assert.Equal(t, kv, r.rewriteURL(ctx, kv))
}
