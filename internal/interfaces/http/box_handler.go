package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// BoxHandler maneja las cajas (protegido).
type BoxHandler struct {
	uc *warehouse.BoxUseCase
}

// NewBoxHandler construye el handler.
func NewBoxHandler(uc *warehouse.BoxUseCase) *BoxHandler {
	return &BoxHandler{uc: uc}
}

// Create godoc
// @Summary      Agregar caja a una partida
// @Tags         boxes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBoxRequest  true  "Partida"
// @Success      201   {object}  dto.BoxResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/boxes [post]
func (h *BoxHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBoxRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if strings.TrimSpace(in.BatchID) == "" {
		return validation(c, "batch_id es requerido")
	}
	box, err := h.uc.Create(c.UserContext(), strings.TrimSpace(in.BatchID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBoxResponse(box))
}

// GetByID godoc
// @Summary      Obtener caja
// @Tags         boxes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.BoxResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boxes/{id} [get]
func (h *BoxHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	box, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBoxResponse(box))
}

// ListByBatch godoc
// @Summary      Cajas de una partida
// @Tags         boxes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la partida"
// @Success      200  {array}   dto.BoxResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/boxes [get]
func (h *BoxHandler) ListByBatch(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	boxes, err := h.uc.ListByBatch(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBoxResponses(boxes))
}

// Update godoc
// @Summary      Corregir caja
// @Description  Corrección administrativa de código o estado. No reconcilia la partida.
// @Tags         boxes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la caja"
// @Param        body  body  dto.UpdateBoxRequest  true  "Cambios"
// @Success      200   {object}  dto.BoxResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/boxes/{id} [put]
func (h *BoxHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.UpdateBoxRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	upd := warehouse.UpdateBoxInput{Code: in.Code}
	if in.Status != nil {
		st, err := entity.ParseGoodsStatus(*in.Status)
		if err != nil {
			return writeError(c, err)
		}
		upd.Status = &st
	}
	box, err := h.uc.Update(c.UserContext(), id, upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBoxResponse(box))
}

// Delete godoc
// @Summary      Eliminar caja
// @Tags         boxes
// @Security     Bearer
// @Param        id   path  string  true  "ID de la caja"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boxes/{id} [delete]
func (h *BoxHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Code godoc
// @Summary      Código de la caja
// @Description  Imagen PNG en base64. 404 si la caja aún no se ha escaneado nunca.
// @Tags         boxes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.BoxCodeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boxes/{id}/code [get]
func (h *BoxHandler) Code(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	code, err := h.uc.GetCode(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BoxCodeResponse{BoxID: id, Code: code})
}

// Scans godoc
// @Summary      Historial de escaneos de la caja
// @Tags         boxes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {array}   dto.ScanEventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boxes/{id}/scans [get]
func (h *BoxHandler) Scans(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	events, err := h.uc.ScanHistory(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToScanEventResponses(events))
}
