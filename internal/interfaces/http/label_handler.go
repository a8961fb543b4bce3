package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/labels"
)

// LabelHandler descarga etiquetas imprimibles (protegido).
type LabelHandler struct {
	uc *labels.UseCase
}

// NewLabelHandler construye el handler.
func NewLabelHandler(uc *labels.UseCase) *LabelHandler {
	return &LabelHandler{uc: uc}
}

// ForBatch godoc
// @Summary      Etiquetas de una partida
// @Tags         labels
// @Security     Bearer
// @Produce      application/pdf,image/png,application/zip,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id      path   string  true   "ID de la partida"
// @Param        format  query  string  false  "Formato"  Enums(pdf, png, zip, xlsx)  default(pdf)
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/labels [get]
func (h *LabelHandler) ForBatch(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	format, err := labels.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.uc.ForBatch(c.UserContext(), id, format)
	if err != nil {
		return writeError(c, err)
	}
	return sendDocument(c, doc)
}

// ForBox godoc
// @Summary      Etiqueta de una caja
// @Tags         labels
// @Security     Bearer
// @Produce      application/pdf,image/png,application/zip,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id      path   string  true   "ID de la caja"
// @Param        format  query  string  false  "Formato"  Enums(pdf, png, zip, xlsx)  default(pdf)
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boxes/{id}/labels [get]
func (h *LabelHandler) ForBox(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	format, err := labels.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.uc.ForBox(c.UserContext(), id, format)
	if err != nil {
		return writeError(c, err)
	}
	return sendDocument(c, doc)
}

func sendDocument(c *fiber.Ctx, doc *labels.Document) error {
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Send(doc.Data)
}
