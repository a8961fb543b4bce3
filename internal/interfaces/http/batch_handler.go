package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// BatchHandler maneja las partidas y su estado agregado (protegido).
type BatchHandler struct {
	uc     *warehouse.BatchUseCase
	engine *warehouse.StatusEngine
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *warehouse.BatchUseCase, engine *warehouse.StatusEngine) *BatchHandler {
	return &BatchHandler{uc: uc, engine: engine}
}

// Create godoc
// @Summary      Registrar partida
// @Description  Crea la partida en RECEIVING con estado GENERATED y box_count cajas (mínimo 1).
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Datos de la partida"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	batch, err := h.uc.CreateBatch(c.UserContext(), warehouse.CreateBatchInput{
		ProductID:  strings.TrimSpace(in.ProductID),
		SupplierID: strings.TrimSpace(in.SupplierID),
		BoxCount:   in.BoxCount,
		ReceivedAt: in.ReceivedAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBatchResponse(batch))
}

// List godoc
// @Summary      Listar partidas
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        supplier_id    query  string  false  "Proveedor"
// @Param        status         query  string  false  "Estado"  Enums(GENERATED, STICKED, SCANNED, SHIPPED)
// @Param        zone           query  string  false  "Nombre de zona"
// @Param        received_from  query  string  false  "Desde (RFC3339 o AAAA-MM-DD)"
// @Param        received_to    query  string  false  "Hasta (RFC3339 o AAAA-MM-DD)"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.BatchListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	filter := entity.BatchFilter{
		ProductID:  c.Query("product_id"),
		SupplierID: c.Query("supplier_id"),
		ZoneName:   strings.ToUpper(c.Query("zone")),
	}
	if s := c.Query("status"); s != "" {
		st, err := entity.ParseGoodsStatus(s)
		if err != nil {
			return writeError(c, err)
		}
		filter.Status = st
	}
	var err error
	if filter.ReceivedFrom, err = parseDateQuery(c, "received_from"); err != nil {
		return validation(c, "received_from inválido")
	}
	if filter.ReceivedTo, err = parseDateQuery(c, "received_to"); err != nil {
		return validation(c, "received_to inválido")
	}
	page := pageFromQuery(c)
	list, total, err := h.uc.ListBatches(c.UserContext(), filter, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.BatchListResponse{
		Items: dto.ToBatchResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Mixed godoc
// @Summary      Partidas con cajas en estados distintos
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/mixed [get]
func (h *BatchHandler) Mixed(c *fiber.Ctx) error {
	list, err := h.engine.FindBatchesWithMixedBoxStatuses(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBatchResponses(list))
}

// GetByID godoc
// @Summary      Obtener partida con sus cajas
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la partida"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	batch, err := h.uc.GetBatch(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBatchResponse(batch))
}

// Update godoc
// @Summary      Actualizar partida
// @Description  Cambia producto, proveedor o fecha de recepción. "" en un id quita la referencia.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la partida"
// @Param        body  body  dto.UpdateBatchRequest  true  "Cambios"
// @Success      200   {object}  dto.BatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [put]
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.UpdateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	batch, err := h.uc.UpdateBatch(c.UserContext(), id, warehouse.UpdateBatchInput{
		ProductID:  in.ProductID,
		SupplierID: in.SupplierID,
		ReceivedAt: in.ReceivedAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBatchResponse(batch))
}

// OverrideStatus godoc
// @Summary      Corregir estado de la partida
// @Description  Fija el estado (y opcionalmente la zona) sin mirar las cajas. El próximo escaneo puede volver a cambiarlo.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la partida"
// @Param        body  body  dto.OverrideStatusRequest  true  "Estado y zona"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/status [put]
func (h *BatchHandler) OverrideStatus(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.OverrideStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	status, err := entity.ParseGoodsStatus(in.Status)
	if err != nil {
		return writeError(c, err)
	}
	batch, err := h.uc.OverrideStatus(c.UserContext(), id, status, strings.ToUpper(strings.TrimSpace(in.Zone)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToBatchResponse(batch))
}

// Delete godoc
// @Summary      Eliminar partida
// @Description  Borra la partida con sus cajas y el historial de escaneos de esas cajas.
// @Tags         batches
// @Security     Bearer
// @Param        id   path  string  true  "ID de la partida"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	if err := h.uc.DeleteBatch(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Histogram godoc
// @Summary      Cajas por estado
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la partida"
// @Success      200  {object}  dto.HistogramResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/histogram [get]
func (h *BatchHandler) Histogram(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	counts, err := h.engine.BoxStatusHistogram(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToHistogramResponse(id, counts))
}

// Reconcile godoc
// @Summary      Reconciliar estado de la partida
// @Description  Aplica la regla agregada: si todas las cajas están SCANNED o SHIPPED la partida pasa a ese estado y a la zona indicada.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la partida"
// @Param        body  body  dto.ReconcileRequest  true  "Zona destino"
// @Success      200   {object}  dto.ReconcileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/reconcile [post]
func (h *BatchHandler) Reconcile(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return nil
	}
	var in dto.ReconcileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	zone := strings.ToUpper(strings.TrimSpace(in.Zone))
	if zone == "" {
		return validation(c, "zone es requerida")
	}
	out, err := h.engine.ReconcileToZone(c.UserContext(), id, zone)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{BatchID: id, Status: string(out.Status), Promoted: out.Promoted})
}

func parseDateQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
