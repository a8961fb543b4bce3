package dto

import (
	"time"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// CreateBatchRequest entrada para registrar una partida. box_count ausente o < 1 crea una caja.
type CreateBatchRequest struct {
	ProductID  string     `json:"product_id" validate:"omitempty,uuid"`
	SupplierID string     `json:"supplier_id" validate:"omitempty,uuid"`
	BoxCount   *int       `json:"box_count"`
	ReceivedAt *time.Time `json:"received_at"`
}

// UpdateBatchRequest cambios administrativos; "" en un id quita la referencia.
type UpdateBatchRequest struct {
	ProductID  *string    `json:"product_id"`
	SupplierID *string    `json:"supplier_id"`
	ReceivedAt *time.Time `json:"received_at"`
}

// OverrideStatusRequest corrección manual de estado (y zona opcional).
type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=GENERATED STICKED SCANNED SHIPPED"`
	Zone   string `json:"zone"`
}

// ReconcileRequest reconciliación manual hacia una zona.
type ReconcileRequest struct {
	Zone string `json:"zone" validate:"required"`
}

// BatchResponse salida de una partida; boxes solo en el detalle.
type BatchResponse struct {
	ID         string        `json:"id"`
	ProductID  string        `json:"product_id,omitempty"`
	SupplierID string        `json:"supplier_id,omitempty"`
	ZoneID     string        `json:"zone_id"`
	Status     string        `json:"status"`
	ReceivedAt time.Time     `json:"received_at"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	Boxes      []BoxResponse `json:"boxes,omitempty"`
}

// BatchListResponse lista paginada de partidas.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// HistogramResponse cajas por estado en una partida.
type HistogramResponse struct {
	BatchID string         `json:"batch_id"`
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
}

// ReconcileResponse resultado de una reconciliación.
type ReconcileResponse struct {
	BatchID  string `json:"batch_id"`
	Status   string `json:"status"`
	Promoted bool   `json:"promoted"`
}

// CreateBoxRequest agrega una caja a una partida existente.
type CreateBoxRequest struct {
	BatchID string `json:"batch_id" validate:"required,uuid"`
}

// UpdateBoxRequest corrección administrativa de una caja.
type UpdateBoxRequest struct {
	Code   *string `json:"code"`
	Status *string `json:"status" validate:"omitempty,oneof=GENERATED STICKED SCANNED SHIPPED"`
}

// BoxResponse salida de una caja. El código (base64) se pide aparte en /code.
type BoxResponse struct {
	ID        string     `json:"id"`
	BatchID   string     `json:"batch_id"`
	Status    string     `json:"status"`
	HasCode   bool       `json:"has_code"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
	ScannedBy *string    `json:"scanned_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BoxCodeResponse imagen PNG del código en base64.
type BoxCodeResponse struct {
	BoxID string `json:"box_id"`
	Code  string `json:"code"`
}

// ScanRequest escaneo de una caja; el operador es el usuario del token.
type ScanRequest struct {
	BoxID string `json:"box_id" validate:"required,uuid"`
	Mode  string `json:"mode" validate:"required,oneof=ON_WAREHOUSE SHIPMENT"`
}

// ScanResponse resultado del escaneo.
type ScanResponse struct {
	Box           BoxResponse       `json:"box"`
	Event         ScanEventResponse `json:"event"`
	BatchStatus   string            `json:"batch_status"`
	BatchPromoted bool              `json:"batch_promoted"`
	CodeGenerated bool              `json:"code_generated"`
	Warnings      []string          `json:"warnings,omitempty"`
}

// ScanEventResponse un registro del historial de escaneos.
type ScanEventResponse struct {
	ID       string    `json:"id"`
	BoxID    string    `json:"box_id"`
	UserID   string    `json:"user_id"`
	Mode     string    `json:"mode"`
	ScanTime time.Time `json:"scan_time"`
}

// CreateZoneRequest entrada para crear una zona.
type CreateZoneRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateZoneRequest cambios de una zona.
type UpdateZoneRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// ZoneResponse salida de una zona.
type ZoneResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// ZoneStatsResponse partidas por zona.
type ZoneStatsResponse struct {
	ZoneID     string `json:"zone_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	BatchCount int    `json:"batch_count"`
}

// ToBatchResponse mapea la entidad; incluye las cajas si vienen cargadas.
func ToBatchResponse(b *entity.ProductBatch) BatchResponse {
	out := BatchResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		SupplierID: b.SupplierID,
		ZoneID:     b.ZoneID,
		Status:     string(b.Status),
		ReceivedAt: b.ReceivedAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	for _, box := range b.Boxes {
		out.Boxes = append(out.Boxes, ToBoxResponse(box))
	}
	return out
}

// ToBatchResponses mapea una lista.
func ToBatchResponses(list []*entity.ProductBatch) []BatchResponse {
	out := make([]BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBatchResponse(b))
	}
	return out
}

// ToBoxResponse mapea la entidad.
func ToBoxResponse(b *entity.Box) BoxResponse {
	return BoxResponse{
		ID:        b.ID,
		BatchID:   b.BatchID,
		Status:    string(b.Status),
		HasCode:   b.HasCode(),
		ScannedAt: b.ScannedAt,
		ScannedBy: b.ScannedBy,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToBoxResponses mapea una lista.
func ToBoxResponses(list []*entity.Box) []BoxResponse {
	out := make([]BoxResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBoxResponse(b))
	}
	return out
}

// ToScanEventResponse mapea la entidad.
func ToScanEventResponse(e *entity.ScanEvent) ScanEventResponse {
	return ScanEventResponse{ID: e.ID, BoxID: e.BoxID, UserID: e.UserID, Mode: string(e.Mode), ScanTime: e.ScanTime}
}

// ToScanEventResponses mapea una lista.
func ToScanEventResponses(list []*entity.ScanEvent) []ScanEventResponse {
	out := make([]ScanEventResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ToScanEventResponse(e))
	}
	return out
}

// ToHistogramResponse convierte el conteo por estado.
func ToHistogramResponse(batchID string, counts map[entity.GoodsStatus]int) HistogramResponse {
	out := HistogramResponse{BatchID: batchID, Counts: make(map[string]int, len(counts))}
	for st, n := range counts {
		out.Counts[string(st)] = n
		out.Total += n
	}
	return out
}

// ToZoneResponse mapea la entidad.
func ToZoneResponse(z *entity.Zone) ZoneResponse {
	return ZoneResponse{ID: z.ID, Name: z.Name, Color: z.Color, CreatedAt: z.CreatedAt}
}

// ToZoneStatsResponses mapea las estadísticas.
func ToZoneStatsResponses(stats []entity.ZoneStats) []ZoneStatsResponse {
	out := make([]ZoneStatsResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, ZoneStatsResponse{ZoneID: s.ZoneID, Name: s.Name, Color: s.Color, BatchCount: s.BatchCount})
	}
	return out
}
