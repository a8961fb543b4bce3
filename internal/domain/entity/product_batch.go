package entity

import "time"

// ProductBatch partida: una recepción de producto de un proveedor, dividida en cajas.
// ProductID y SupplierID son opcionales (vacío = sin referencia).
type ProductBatch struct {
	ID         string
	ProductID  string
	SupplierID string
	ZoneID     string
	Status     GoodsStatus
	ReceivedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Boxes []*Box // se carga solo cuando el caso de uso lo requiere
}

// BatchFilter criterios de búsqueda de partidas.
type BatchFilter struct {
	ProductID    string
	SupplierID   string
	Status       GoodsStatus
	ZoneName     string
	ReceivedFrom *time.Time
	ReceivedTo   *time.Time
}
