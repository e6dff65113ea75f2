package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Gestion-api/internal/application/analytics"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// AnalyticsHandler agregaciones a demanda sobre una colección con ámbito.
type AnalyticsHandler struct {
	uc *appanalytics.UseCase
}

// NewAnalyticsHandler construye el handler.
func NewAnalyticsHandler(uc *appanalytics.UseCase) *AnalyticsHandler {
	return &AnalyticsHandler{uc: uc}
}

// Count godoc
// @Summary      Contar registros con campo = valor
// @Tags         analytics
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string             true  "Colección"
// @Param        body  body  dto.CountRequest   true  "Campo, valor y filtros"
// @Success      200  {object}  dto.CountResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/analytics/{kind}/count [post]
func (h *AnalyticsHandler) Count(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var req dto.CountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Count(c.UserContext(), p, c.Params("kind"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Buckets godoc
// @Summary      Serie temporal por mes o año
// @Description  fn: count | sum | avg. granularity: month | year. Claves YYYY-MM o YYYY en orden ascendente.
// @Tags         analytics
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string              true  "Colección"
// @Param        body  body  dto.BucketsRequest  true  "Campo de fecha, granularidad, función"
// @Success      200  {object}  dto.BucketsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/{kind}/buckets [post]
func (h *AnalyticsHandler) Buckets(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var req dto.BucketsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Buckets(c.UserContext(), p, c.Params("kind"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Ranking godoc
// @Summary      Ranking top-N por grupo
// @Tags         analytics
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string              true  "Colección"
// @Param        body  body  dto.RankingRequest  true  "Campo de grupo, métrica, función y top_n"
// @Success      200  {object}  dto.RankingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/{kind}/ranking [post]
func (h *AnalyticsHandler) Ranking(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var req dto.RankingRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Ranking(c.UserContext(), p, c.Params("kind"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Urgent godoc
// @Summary      Registros con vencimiento próximo
// @Description  Sin fields se usan los campos de vencimiento declarados para la colección.
// @Tags         analytics
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string             true  "Colección"
// @Param        body  body  dto.UrgentRequest  true  "Campos y ventana en días"
// @Success      200  {object}  dto.UrgentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/{kind}/urgent [post]
func (h *AnalyticsHandler) Urgent(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var req dto.UrgentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Urgent(c.UserContext(), p, c.Params("kind"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
