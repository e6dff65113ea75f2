package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/usecase"
)

// CompanyHandler empresas y activación de módulos.
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// GetByID godoc
// @Summary      Obtener empresa por ID
// @Tags         empresas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	out, err := h.uc.GetByID(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Modules godoc
// @Summary      Módulos contratados por la empresa
// @Tags         empresas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.ModuleListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/modulos [get]
func (h *CompanyHandler) Modules(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	out, err := h.uc.Modules(c.UserContext(), p, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetModule godoc
// @Summary      Activar o desactivar un módulo (solo administrador)
// @Tags         empresas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                true  "ID de la empresa"
// @Param        modulo  path  string                true  "formacion | iso | crm | rgpd"
// @Param        body    body  dto.SetModuleRequest  true  "Estado y vigencia"
// @Success      200  {object}  dto.ModuleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/empresas/{id}/modulos/{modulo} [put]
func (h *CompanyHandler) SetModule(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var in dto.SetModuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetModule(c.UserContext(), p, c.Params("id"), c.Params("modulo"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
