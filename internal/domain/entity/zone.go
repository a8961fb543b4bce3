package entity

import "time"

// Nombres de zonas sembradas por la migración inicial.
const (
	ZoneReceiving = "RECEIVING"
	ZoneStorage   = "STORAGE"
	ZoneShipment  = "SHIPMENT"
)

// Zone ubicación física o lógica de la bodega.
type Zone struct {
	ID        string
	Name      string
	Color     string
	CreatedAt time.Time
}

// ZoneStats cantidad de partidas que ocupan una zona.
type ZoneStats struct {
	ZoneID     string
	Name       string
	Color      string
	BatchCount int
}
