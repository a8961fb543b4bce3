package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// ScanHandler recibe los escaneos de las pistolas de bodega (protegido).
type ScanHandler struct {
	uc *warehouse.ScanUseCase
}

// NewScanHandler construye el handler.
func NewScanHandler(uc *warehouse.ScanUseCase) *ScanHandler {
	return &ScanHandler{uc: uc}
}

// Scan godoc
// @Summary      Escanear caja
// @Description  Marca la caja según el modo (ON_WAREHOUSE → SCANNED, SHIPMENT → SHIPPED), registra el evento y reconcilia la partida. El operador es el usuario del token.
// @Tags         scans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Caja y modo"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/scans [post]
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	boxID := strings.TrimSpace(in.BoxID)
	if boxID == "" {
		return validation(c, "box_id es requerido")
	}
	mode, err := entity.ParseScanMode(in.Mode)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.ScanBox(c.UserContext(), boxID, GetUserID(c), mode)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ScanResponse{
		Box:           dto.ToBoxResponse(res.Box),
		Event:         dto.ToScanEventResponse(res.Event),
		BatchStatus:   string(res.BatchStatus),
		BatchPromoted: res.BatchPromoted,
		CodeGenerated: !res.CodeStep.Skipped && !res.CodeStep.Failed(),
	}
	if res.CodeStep.Failed() {
		out.Warnings = append(out.Warnings, "no se pudo generar el código de la caja: "+res.CodeStep.Err.Error())
	}
	return c.JSON(out)
}
