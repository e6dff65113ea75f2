package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/access"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

const (
	tenantA = "empresa-a"
	agentA  = "comercial-1"
)

// fakeFeatures responde según un mapa empresa/módulo → activo.
type fakeFeatures struct {
	active map[string]bool
	err    error
	calls  int
}

func (f *fakeFeatures) HasActiveModule(_ context.Context, companyID, moduleName string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.active[companyID+"/"+moduleName], nil
}

func newResolver(f *fakeFeatures) *access.Resolver {
	return access.NewResolver(access.DefaultCatalog(), f)
}

func allKinds() []string {
	var out []string
	for name := range access.DefaultCatalog() {
		out = append(out, name)
	}
	return out
}

func isoOn() *fakeFeatures {
	return &fakeFeatures{active: map[string]bool{tenantA + "/" + entity.ModuleISO: true}}
}

// ──────────────────────────────────────────────────────────────────────────────
// admin
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_AdminSinFiltrosEnTodasLasColecciones(t *testing.T) {
	f := &fakeFeatures{}
	r := newResolver(f)
	admin := entity.NewPrincipal("admin", "", "", "u-admin")

	for _, kind := range allKinds() {
		d, err := r.Resolve(context.Background(), admin, kind)
		require.NoError(t, err, kind)
		assert.Empty(t, d.Filters, kind)
		assert.Nil(t, d.Membership, kind)
		assert.Equal(t, access.CapReadAll, d.Capability, kind)
	}
	assert.Zero(t, f.calls, "admin no consulta módulos")
}

// ──────────────────────────────────────────────────────────────────────────────
// gestor
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_GestorFiltraPorSuEmpresaEnTodasLasColecciones(t *testing.T) {
	r := newResolver(isoOn())
	gestor := entity.NewPrincipal("gestor", tenantA, "", "u-1")

	for _, kind := range allKinds() {
		d, err := r.Resolve(context.Background(), gestor, kind)
		require.NoError(t, err, kind)
		require.Len(t, d.Filters, 1, kind)
		assert.Equal(t, repository.OpEq, d.Filters[0].Op)
		assert.Equal(t, tenantA, d.Filters[0].Value)
		assert.Equal(t, access.CapReadWriteOwn, d.Capability)
	}
}

func TestResolve_GestorEmpresasUsaColumnaID(t *testing.T) {
	r := newResolver(isoOn())
	d, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "empresas")
	require.NoError(t, err)
	assert.Equal(t, []repository.Filter{repository.Eq("id", tenantA)}, d.Filters)
}

func TestResolve_GestorOtrasColeccionesUsanEmpresaID(t *testing.T) {
	r := newResolver(isoOn())
	d, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "participantes")
	require.NoError(t, err)
	assert.Equal(t, []repository.Filter{repository.Eq("empresa_id", tenantA)}, d.Filters)
}

func TestResolve_GestorSinEmpresa_MissingTenant(t *testing.T) {
	r := newResolver(isoOn())
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", "", "", "u-1"), "participantes")
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}

// ──────────────────────────────────────────────────────────────────────────────
// comercial
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_ComercialColeccionPropiaFiltraEmpresaYAgente(t *testing.T) {
	r := newResolver(&fakeFeatures{})
	p := entity.NewPrincipal("comercial", tenantA, agentA, "u-2")

	for _, kind := range []string{"oportunidades", "tareas", "comunicaciones"} {
		d, err := r.Resolve(context.Background(), p, kind)
		require.NoError(t, err, kind)
		assert.ElementsMatch(t, []repository.Filter{
			repository.Eq("empresa_id", tenantA),
			repository.Eq("comercial_id", agentA),
		}, d.Filters, kind)
		assert.Nil(t, d.Membership)
		assert.Equal(t, access.CapReadWriteAssigned, d.Capability)
	}
}

func TestResolve_ComercialClientesUsaPertenenciaSinFiltroDirectoDeAgente(t *testing.T) {
	r := newResolver(&fakeFeatures{})
	p := entity.NewPrincipal("comercial", tenantA, agentA, "u-2")

	d, err := r.Resolve(context.Background(), p, "clientes")
	require.NoError(t, err)

	for _, f := range d.Filters {
		assert.NotEqual(t, "comercial_id", f.Field, "el destino no lleva filtro directo de agente")
	}
	require.NotNil(t, d.Membership)
	assert.Equal(t, "oportunidades", d.Membership.Source)
	assert.Equal(t, "cliente_id", d.Membership.SourceField)
	assert.Equal(t, "id", d.Membership.TargetField)
	assert.Contains(t, d.Membership.SourceFilters, repository.Eq("comercial_id", agentA))
	assert.Contains(t, d.Membership.SourceFilters, repository.Eq("empresa_id", tenantA))

	mf := d.MembershipFilter([]any{"c1", "c2"})
	assert.Equal(t, repository.OpIn, mf.Op)
	assert.Equal(t, "id", mf.Field)
}

func TestResolve_ComercialSinAccesoAFormacion(t *testing.T) {
	r := newResolver(isoOn())
	p := entity.NewPrincipal("comercial", tenantA, agentA, "u-2")
	for _, kind := range []string{"participantes", "grupos", "no_conformidades", "empresas"} {
		_, err := r.Resolve(context.Background(), p, kind)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, kind)
	}
}

func TestResolve_ComercialSinAgente_MissingAgent(t *testing.T) {
	r := newResolver(&fakeFeatures{})
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("comercial", tenantA, "", "u-2"), "tareas")
	assert.ErrorIs(t, err, domain.ErrMissingAgent)
}

func TestResolve_ComercialSinEmpresa_MissingTenant(t *testing.T) {
	r := newResolver(&fakeFeatures{})
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("comercial", "", agentA, "u-2"), "tareas")
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}

// ──────────────────────────────────────────────────────────────────────────────
// roles y colecciones desconocidas
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_RolDesconocido_Unauthorized(t *testing.T) {
	r := newResolver(isoOn())
	for _, role := range []string{"", "visitante", "bodeguero"} {
		_, err := r.Resolve(context.Background(), entity.NewPrincipal(role, tenantA, "", "u"), "participantes")
		assert.ErrorIs(t, err, domain.ErrUnauthorized, role)
	}
}

func TestResolve_ColeccionDesconocida_Unauthorized(t *testing.T) {
	r := newResolver(isoOn())
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("admin", "", "", "u"), "nominas")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// módulo ISO
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_ModuloISOInactivo_FeatureNotEnabled(t *testing.T) {
	r := newResolver(&fakeFeatures{active: map[string]bool{}})
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "no_conformidades")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFeatureNotEnabled)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolve_ModuloISOActivo_DevuelveDescriptor(t *testing.T) {
	f := isoOn()
	r := newResolver(f)
	d, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "auditorias")
	require.NoError(t, err)
	assert.Len(t, d.Filters, 1)
	assert.Equal(t, 1, f.calls)
}

func TestResolve_ColeccionSinModuloNoConsultaVerificador(t *testing.T) {
	f := &fakeFeatures{}
	r := newResolver(f)
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "participantes")
	require.NoError(t, err)
	assert.Zero(t, f.calls)
}

func TestResolve_FalloDelVerificador_NoSeConfundeConModuloInactivo(t *testing.T) {
	r := newResolver(&fakeFeatures{err: errors.New("db caída")})
	_, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "auditorias")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrFeatureNotEnabled)
	assert.Contains(t, err.Error(), "db caída")
}

func TestDescriptor_ApplyMantieneFiltrosObligatoriosAlFinal(t *testing.T) {
	r := newResolver(isoOn())
	d, err := r.Resolve(context.Background(), entity.NewPrincipal("gestor", tenantA, "", "u-1"), "participantes")
	require.NoError(t, err)

	user := []repository.Filter{repository.Eq("empresa_id", "empresa-b"), repository.Eq("estado", "activo")}
	merged := d.Apply(user)

	require.Len(t, merged, 3)
	assert.Equal(t, repository.Eq("empresa_id", tenantA), merged[2])
}
