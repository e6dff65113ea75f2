package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
	denial bool // denegación de alcance: se registra en WARN
}

// Orden relevante: el primer errors.Is que coincide gana.
var errorTable = []errorMapping{
	{domain.ErrMissingTenant, fiber.StatusForbidden, "MISSING_TENANT", true},
	{domain.ErrMissingAgent, fiber.StatusForbidden, "MISSING_AGENT", true},
	{domain.ErrFeatureNotEnabled, fiber.StatusForbidden, "FEATURE_NOT_ENABLED", true},
	{domain.ErrUnauthorized, fiber.StatusForbidden, "ACCESS_DENIED", true},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", true},
	{domain.ErrAggregationInput, fiber.StatusBadRequest, "INVALID_AGGREGATION", false},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", false},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", false},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", false},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", false},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", false},
}

// writeError punto único de traducción de errores de dominio a HTTP.
// Los errores no clasificados son 500 INTERNAL y su detalle no se expone al cliente.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.denial {
			ev := log.Warn().Str("code", m.code).Str("path", c.Path()).Err(err)
			if p, ok := GetPrincipal(c); ok {
				ev = ev.Str("role", p.Role).Str("tenant", p.TenantID)
			}
			ev.Msg("acceso denegado")
		}
		return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

// ErrorHandler manejador de errores de Fiber para rutas no encontradas y errores no tratados.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusBadRequest:
			code = "INVALID_BODY"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "petición sin autenticar"})
}
