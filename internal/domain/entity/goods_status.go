package entity

import (
	"fmt"
	"strings"

	"github.com/jhoicas/citrus-stock/internal/domain"
)

// GoodsStatus estado de una caja o de una partida.
type GoodsStatus string

const (
	GoodsStatusGenerated GoodsStatus = "GENERATED"
	GoodsStatusSticked   GoodsStatus = "STICKED" // legado, no lo asigna ningún flujo
	GoodsStatusScanned   GoodsStatus = "SCANNED"
	GoodsStatusShipped   GoodsStatus = "SHIPPED"
)

// AllGoodsStatuses devuelve los estados en orden de progresión.
func AllGoodsStatuses() []GoodsStatus {
	return []GoodsStatus{GoodsStatusGenerated, GoodsStatusSticked, GoodsStatusScanned, GoodsStatusShipped}
}

// ParseGoodsStatus valida el nombre recibido en el borde (HTTP, DB).
func ParseGoodsStatus(s string) (GoodsStatus, error) {
	switch st := GoodsStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case GoodsStatusGenerated, GoodsStatusSticked, GoodsStatusScanned, GoodsStatusShipped:
		return st, nil
	default:
		return "", fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, s)
	}
}

// ScanMode intención del escaneo: llegada a bodega o despacho.
type ScanMode string

const (
	ScanModeOnWarehouse ScanMode = "ON_WAREHOUSE"
	ScanModeShipment    ScanMode = "SHIPMENT"
)

// AllScanModes devuelve los modos soportados.
func AllScanModes() []ScanMode {
	return []ScanMode{ScanModeOnWarehouse, ScanModeShipment}
}

// ParseScanMode valida el modo recibido en el borde.
func ParseScanMode(s string) (ScanMode, error) {
	switch m := ScanMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ScanModeOnWarehouse, ScanModeShipment:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedScanMode, s)
	}
}
