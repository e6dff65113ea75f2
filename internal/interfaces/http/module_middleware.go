package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
)

// moduleChecker es el contrato mínimo que necesita el middleware para verificar módulos.
// Lo implementa *usecase.ModuleService.
type moduleChecker interface {
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}

// RequireModule corta la petición si la empresa del principal no tiene el módulo vigente hoy.
// Debe usarse DESPUÉS de AuthMiddleware. El administrador no está sujeto a módulos.
//
// Comportamiento:
//   - 403 MISSING_TENANT → usuario no administrador sin empresa.
//   - 403 FEATURE_NOT_ENABLED → módulo no contratado o fuera de vigencia.
//   - 503 MODULE_CHECK_FAILED → fallo de infraestructura al consultar la DB.
func RequireModule(moduleName string, checker moduleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "petición sin autenticar"})
		}
		if p.IsAdmin() {
			return c.Next()
		}
		if !p.HasTenant() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "MISSING_TENANT", Message: "el usuario no tiene empresa asignada"})
		}

		active, err := checker.HasActiveModule(c.UserContext(), p.TenantID, moduleName)
		if err != nil {
			log.Error().Err(err).Str("module", moduleName).Str("tenant", p.TenantID).Msg("verificación de módulo fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}
		if !active {
			log.Warn().Str("module", moduleName).Str("tenant", p.TenantID).Str("code", "FEATURE_NOT_ENABLED").Msg("acceso denegado")
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FEATURE_NOT_ENABLED",
				Message: "el módulo '" + moduleName + "' no está activo para esta empresa",
			})
		}
		return c.Next()
	}
}
