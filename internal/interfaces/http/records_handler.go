package http

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/records"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
)

// Parámetros de consulta reservados; el resto se interpreta como filtro sobre columnas.
var reservedParams = map[string]bool{"order": true, "desc": true, "limit": true, "offset": true}

// RecordsHandler CRUD con ámbito sobre cualquier colección del catálogo.
type RecordsHandler struct {
	uc *records.UseCase
}

// NewRecordsHandler construye el handler.
func NewRecordsHandler(uc *records.UseCase) *RecordsHandler {
	return &RecordsHandler{uc: uc}
}

// List godoc
// @Summary      Listar registros de una colección
// @Description  Cada parámetro campo=valor es un filtro de igualdad; campo__gte, campo__lte y campo__in (lista separada por comas) también se admiten.
// @Description  Los filtros del ámbito del usuario se aplican siempre y no pueden ampliarse.
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        kind    path   string  true   "Colección (grupos, oportunidades, ...)"
// @Param        order   query  string  false  "Columna de orden"
// @Param        desc    query  bool    false  "Orden descendente"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.RecordListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/records/{kind} [get]
func (h *RecordsHandler) List(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	kind := c.Params("kind")

	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	page.Normalize()

	filters, err := parseFilters(c.Queries())
	if err != nil {
		return writeError(c, err)
	}
	var order []repository.Order
	if f := c.Query("order"); f != "" {
		order = append(order, repository.Order{Field: f, Desc: c.QueryBool("desc", false)})
	}

	rows, err := h.uc.Fetch(c.UserContext(), p, kind, records.FetchParams{
		Filters: filters, OrderBy: order, Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		items = append(items, r)
	}
	return c.JSON(dto.RecordListResponse{
		Kind:  kind,
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		Empty: len(items) == 0,
	})
}

// Get godoc
// @Summary      Obtener un registro por ID
// @Tags         records
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "Colección"
// @Param        id    path  string  true  "ID del registro"
// @Success      200  {object}  dto.RecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{kind}/{id} [get]
func (h *RecordsHandler) Get(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	rec, err := h.uc.Get(c.UserContext(), p, c.Params("kind"), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RecordResponse{Kind: c.Params("kind"), Item: rec})
}

// Create godoc
// @Summary      Crear un registro
// @Description  Las columnas de ámbito (empresa_id, comercial_id) se fijan desde el token salvo para el administrador.
// @Tags         records
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string  true  "Colección"
// @Param        body  body  object  true  "Columnas del registro"
// @Success      201  {object}  dto.RecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/records/{kind} [post]
func (h *RecordsHandler) Create(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return badBody(c)
	}
	rec, err := h.uc.Create(c.UserContext(), p, c.Params("kind"), entity.Record(payload))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordResponse{Kind: c.Params("kind"), Item: rec})
}

// Update godoc
// @Summary      Actualizar un registro
// @Tags         records
// @Security     Bearer
// @Accept       json
// @Param        kind  path  string  true  "Colección"
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  object  true  "Columnas a modificar"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{kind}/{id} [put]
func (h *RecordsHandler) Update(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	var payload map[string]any
	if err := c.BodyParser(&payload); err != nil {
		return badBody(c)
	}
	if err := h.uc.Update(c.UserContext(), p, c.Params("kind"), c.Params("id"), entity.Record(payload)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Borrar un registro (solo administrador)
// @Tags         records
// @Security     Bearer
// @Param        kind  path  string  true  "Colección"
// @Param        id    path  string  true  "ID del registro"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/records/{kind}/{id} [delete]
func (h *RecordsHandler) Delete(c *fiber.Ctx) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return unauthenticated(c)
	}
	if err := h.uc.Delete(c.UserContext(), p, c.Params("kind"), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseFilters traduce los parámetros de consulta a filtros en orden estable.
func parseFilters(q map[string]string) ([]repository.Filter, error) {
	keys := make([]string, 0, len(q))
	for k := range q {
		if !reservedParams[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	filters := make([]repository.Filter, 0, len(keys))
	for _, k := range keys {
		field, op := k, repository.OpEq
		if i := strings.LastIndex(k, "__"); i > 0 {
			field = k[:i]
			switch suffix := k[i+2:]; suffix {
			case "gte":
				op = repository.OpGte
			case "lte":
				op = repository.OpLte
			case "in":
				op = repository.OpIn
			default:
				return nil, fmt.Errorf("%w: operador %q", domain.ErrInvalidInput, suffix)
			}
		}
		if op == repository.OpIn {
			parts := strings.Split(q[k], ",")
			vals := make([]any, 0, len(parts))
			for _, v := range parts {
				if v = strings.TrimSpace(v); v != "" {
					vals = append(vals, v)
				}
			}
			filters = append(filters, repository.In(field, vals))
			continue
		}
		filters = append(filters, repository.Filter{Field: field, Op: op, Value: q[k]})
	}
	return filters, nil
}
