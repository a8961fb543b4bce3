package warehouse

import "github.com/jhoicas/citrus-stock/internal/domain/entity"

// AggregateStatus deriva el estado de la partida a partir de todas sus cajas.
// Solo hay resultado cuando todas están SCANNED o todas SHIPPED; sin cajas no hay base.
func AggregateStatus(boxes []*entity.Box) (entity.GoodsStatus, bool) {
	if len(boxes) == 0 {
		return "", false
	}
	allScanned, allShipped := true, true
	for _, b := range boxes {
		if b.Status != entity.GoodsStatusScanned {
			allScanned = false
		}
		if b.Status != entity.GoodsStatusShipped {
			allShipped = false
		}
	}
	switch {
	case allScanned:
		return entity.GoodsStatusScanned, true
	case allShipped:
		return entity.GoodsStatusShipped, true
	default:
		return "", false
	}
}

// NeedsUpdate indica si aplicar (status, zoneID) cambia la partida.
func NeedsUpdate(batch *entity.ProductBatch, status entity.GoodsStatus, zoneID string) bool {
	return batch.Status != status || batch.ZoneID != zoneID
}

// BoxCount cantidad de cajas a crear: menos de 1 se normaliza a 1.
func BoxCount(requested *int) int {
	if requested == nil || *requested < 1 {
		return 1
	}
	return *requested
}
