package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/application/usecase"
)

// ZoneHandler CRUD de zonas (protegido).
type ZoneHandler struct {
	uc *usecase.ZoneUseCase
}

// NewZoneHandler construye el handler.
func NewZoneHandler(uc *usecase.ZoneUseCase) *ZoneHandler {
	return &ZoneHandler{uc: uc}
}

// Create godoc
// @Summary      Crear zona
// @Tags         zones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateZoneRequest  true  "Nombre y color (#RRGGBB)"
// @Success      201   {object}  dto.ZoneResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/zones [post]
func (h *ZoneHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateZoneRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar zonas
// @Tags         zones
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200  {array}  dto.ZoneResponse
// @Router       /api/zones [get]
func (h *ZoneHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Partidas por zona
// @Tags         zones
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ZoneStatsResponse
// @Router       /api/zones/stats [get]
func (h *ZoneHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener zona
// @Tags         zones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la zona"
// @Success      200  {object}  dto.ZoneResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/zones/{id} [get]
func (h *ZoneHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar zona
// @Tags         zones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la zona"
// @Param        body  body  dto.UpdateZoneRequest  true  "Cambios"
// @Success      200   {object}  dto.ZoneResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/zones/{id} [put]
func (h *ZoneHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.UpdateZoneRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar zona
// @Description  409 si alguna partida ocupa la zona.
// @Tags         zones
// @Security     Bearer
// @Param        id   path  string  true  "ID de la zona"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/zones/{id} [delete]
func (h *ZoneHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
