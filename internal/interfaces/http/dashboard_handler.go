package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Gestion-api/internal/application/analytics"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// DashboardHandler maneja los paneles por área.
// Las fechas se calculan en el servidor en la zona configurada; no hay parámetros.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Formacion godoc
// @Summary      Panel de formación
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.FormacionSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/dashboard/formacion [get]
func (h *DashboardHandler) Formacion(c *fiber.Ctx) error {
	return serveSummary(c, func(ctx context.Context, p entity.Principal) (any, error) {
		return h.uc.Formacion(ctx, p)
	})
}

// CRM godoc
// @Summary      Panel comercial
// @Description  Un comercial solo ve sus oportunidades y tareas.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CRMSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/dashboard/crm [get]
func (h *DashboardHandler) CRM(c *fiber.Ctx) error {
	return serveSummary(c, func(ctx context.Context, p entity.Principal) (any, error) {
		return h.uc.CRM(ctx, p)
	})
}

// Calidad godoc
// @Summary      Panel de calidad (requiere módulo ISO vigente)
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CalidadSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/dashboard/calidad [get]
func (h *DashboardHandler) Calidad(c *fiber.Ctx) error {
	return serveSummary(c, func(ctx context.Context, p entity.Principal) (any, error) {
		return h.uc.Calidad(ctx, p)
	})
}

// RGPD godoc
// @Summary      Panel RGPD
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RGPDSummaryDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/dashboard/rgpd [get]
func (h *DashboardHandler) RGPD(c *fiber.Ctx) error {
	return serveSummary(c, func(ctx context.Context, p entity.Principal) (any, error) {
		return h.uc.RGPD(ctx, p)
	})
}

func serveSummary(c *fiber.Ctx, build func(context.Context, entity.Principal) (any, error)) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	summary, err := build(c.UserContext(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
