package entity

import "time"

// Supplier proveedor que entrega las partidas.
type Supplier struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
