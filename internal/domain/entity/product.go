package entity

import "time"

// Product representa un producto que llega en partidas desde los proveedores.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
