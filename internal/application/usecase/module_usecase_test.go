package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/testutil"
)

const empresaA = "11111111-1111-1111-1111-111111111111"

var (
	admin   = entity.NewPrincipal("admin", "", "", "u-admin")
	gestorA = entity.NewPrincipal("gestor", empresaA, "", "u-ga")
	gestorB = entity.NewPrincipal("gestor", "22222222-2222-2222-2222-222222222222", "", "u-gb")
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func clock(t time.Time) func() time.Time { return func() time.Time { return t } }

func newRepo() *testutil.CompanyRepo {
	return testutil.NewCompanyRepo(&entity.Company{ID: empresaA, Name: "Formaciones del Norte SL", Status: "active"})
}

// ──────────────────────────────────────────────────────────────────────────────
// ModuleService
// ──────────────────────────────────────────────────────────────────────────────

func TestHasActiveModule_VentanaDeVigencia(t *testing.T) {
	repo := newRepo()
	repo.Modules[empresaA+"/iso"] = &entity.CompanyModule{
		CompanyID: empresaA, ModuleName: "iso", IsActive: true,
		ActivatedOn: day("2024-01-01"), ExpiresOn: day("2024-12-31"),
	}
	ctx := context.Background()

	dentro := usecase.NewModuleService(repo, time.UTC, clock(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
	ok, err := dentro.HasActiveModule(ctx, empresaA, "iso")
	require.NoError(t, err)
	assert.True(t, ok)

	fuera := usecase.NewModuleService(repo, time.UTC, clock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	ok, err = fuera.HasActiveModule(ctx, empresaA, "iso")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasActiveModule_DiaSegunZonaConfigurada(t *testing.T) {
	repo := newRepo()
	repo.Modules[empresaA+"/iso"] = &entity.CompanyModule{
		CompanyID: empresaA, ModuleName: "iso", IsActive: true, ExpiresOn: day("2024-12-31"),
	}
	// 31/12 23:30 UTC ya es 1 de enero en Madrid (UTC+1).
	madrid := time.FixedZone("CET", 3600)
	svc := usecase.NewModuleService(repo, madrid, clock(time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)))

	ok, err := svc.HasActiveModule(context.Background(), empresaA, "iso")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasActiveModule_SinFilaODesactivado(t *testing.T) {
	repo := newRepo()
	repo.Modules[empresaA+"/crm"] = &entity.CompanyModule{CompanyID: empresaA, ModuleName: "crm", IsActive: false}
	svc := usecase.NewModuleService(repo, nil, nil)

	ok, err := svc.HasActiveModule(context.Background(), empresaA, "iso")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasActiveModule(context.Background(), empresaA, "crm")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasActiveModule_FalloDeInfraestructuraEsError(t *testing.T) {
	repo := newRepo()
	boom := errors.New("db caída")
	repo.Err = boom
	svc := usecase.NewModuleService(repo, nil, nil)

	ok, err := svc.HasActiveModule(context.Background(), empresaA, "iso")
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrFeatureNotEnabled)
}

func TestHasActiveModule_ParametrosObligatorios(t *testing.T) {
	svc := usecase.NewModuleService(newRepo(), nil, nil)
	_, err := svc.HasActiveModule(context.Background(), "", "iso")
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// CompanyUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestSetModule_SoloAdministrador(t *testing.T) {
	repo := newRepo()
	uc := usecase.NewCompanyUseCase(repo, usecase.NewModuleService(repo, nil, nil))
	on := true

	_, err := uc.SetModule(context.Background(), gestorA, empresaA, "iso", dto.SetModuleRequest{IsActive: &on})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, repo.Modules)
}

func TestSetModule_ActivaConVentanaYSeRefleja(t *testing.T) {
	repo := newRepo()
	svc := usecase.NewModuleService(repo, time.UTC, clock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
	uc := usecase.NewCompanyUseCase(repo, svc)
	on := true

	out, err := uc.SetModule(context.Background(), admin, empresaA, "iso", dto.SetModuleRequest{
		IsActive: &on, ActivatedOn: "2024-01-01", ExpiresOn: "2024-12-31",
	})
	require.NoError(t, err)
	assert.True(t, out.ActiveToday)
	require.NotNil(t, out.ExpiresOn)
	assert.Equal(t, "2024-12-31", *out.ExpiresOn)

	ok, err := svc.HasActiveModule(context.Background(), empresaA, "iso")
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := uc.Modules(context.Background(), gestorA, empresaA)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "iso", list.Items[0].ModuleName)
}

func TestSetModule_EntradaInvalida(t *testing.T) {
	repo := newRepo()
	uc := usecase.NewCompanyUseCase(repo, usecase.NewModuleService(repo, nil, nil))
	on := true

	_, err := uc.SetModule(context.Background(), admin, empresaA, "contabilidad", dto.SetModuleRequest{IsActive: &on})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SetModule(context.Background(), admin, empresaA, "iso", dto.SetModuleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SetModule(context.Background(), admin, empresaA, "iso", dto.SetModuleRequest{
		IsActive: &on, ActivatedOn: "2024-06-01", ExpiresOn: "2024-01-01",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SetModule(context.Background(), admin, "no-existe", "iso", dto.SetModuleRequest{IsActive: &on})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModules_GestorSoloSuEmpresa(t *testing.T) {
	repo := newRepo()
	uc := usecase.NewCompanyUseCase(repo, usecase.NewModuleService(repo, nil, nil))

	_, err := uc.Modules(context.Background(), gestorB, empresaA)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Modules(context.Background(), entity.NewPrincipal("gestor", "", "", "u"), empresaA)
	assert.ErrorIs(t, err, domain.ErrMissingTenant)

	c, err := uc.GetByID(context.Background(), gestorA, empresaA)
	require.NoError(t, err)
	assert.Equal(t, "Formaciones del Norte SL", c.Name)
}
