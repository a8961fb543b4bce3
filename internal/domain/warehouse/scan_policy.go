package warehouse

import (
	"fmt"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// ScanPolicy efecto de un modo de escaneo: zona destino y estados resultantes.
type ScanPolicy struct {
	Mode        entity.ScanMode
	TargetZone  string
	BoxStatus   entity.GoodsStatus
	BatchStatus entity.GoodsStatus
}

// PolicyFor devuelve la política fija del modo. Cualquier otro valor falla.
//
//	ON_WAREHOUSE -> RECEIVING, SCANNED, SCANNED
//	SHIPMENT     -> SHIPMENT,  SHIPPED, SHIPPED
func PolicyFor(mode entity.ScanMode) (ScanPolicy, error) {
	switch mode {
	case entity.ScanModeOnWarehouse:
		return ScanPolicy{
			Mode:        mode,
			TargetZone:  entity.ZoneReceiving,
			BoxStatus:   entity.GoodsStatusScanned,
			BatchStatus: entity.GoodsStatusScanned,
		}, nil
	case entity.ScanModeShipment:
		return ScanPolicy{
			Mode:        mode,
			TargetZone:  entity.ZoneShipment,
			BoxStatus:   entity.GoodsStatusShipped,
			BatchStatus: entity.GoodsStatusShipped,
		}, nil
	default:
		return ScanPolicy{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedScanMode, string(mode))
	}
}
