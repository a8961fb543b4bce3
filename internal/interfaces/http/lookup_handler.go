package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/usecase"
)

// LookupHandler listas cerradas traducidas según Accept-Language.
type LookupHandler struct {
	uc *usecase.LookupUseCase
}

// NewLookupHandler construye el handler.
func NewLookupHandler(uc *usecase.LookupUseCase) *LookupHandler {
	return &LookupHandler{uc: uc}
}

// GoodsStatuses godoc
// @Summary      Estados de caja y partida
// @Tags         lookups
// @Security     Bearer
// @Produce      json
// @Param        Accept-Language  header  string  false  "en, es, ru"
// @Success      200  {object}  dto.LookupResponse
// @Router       /api/lookups/goods-status [get]
func (h *LookupHandler) GoodsStatuses(c *fiber.Ctx) error {
	return c.JSON(h.uc.GoodsStatuses(c.Get(fiber.HeaderAcceptLanguage)))
}

// ScanModes godoc
// @Summary      Modos de escaneo
// @Tags         lookups
// @Security     Bearer
// @Produce      json
// @Param        Accept-Language  header  string  false  "en, es, ru"
// @Success      200  {object}  dto.LookupResponse
// @Router       /api/lookups/scan-modes [get]
func (h *LookupHandler) ScanModes(c *fiber.Ctx) error {
	return c.JSON(h.uc.ScanModes(c.Get(fiber.HeaderAcceptLanguage)))
}

// Zones godoc
// @Summary      Zonas con color
// @Tags         lookups
// @Security     Bearer
// @Produce      json
// @Param        Accept-Language  header  string  false  "en, es, ru"
// @Success      200  {object}  dto.LookupResponse
// @Router       /api/lookups/zones [get]
func (h *LookupHandler) Zones(c *fiber.Ctx) error {
	out, err := h.uc.Zones(c.UserContext(), c.Get(fiber.HeaderAcceptLanguage))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
