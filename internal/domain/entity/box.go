package entity

import "time"

// Box unidad física de una partida; se escanea y rastrea individualmente.
// Code queda vacío hasta que se genera la imagen codificada (base64 PNG).
type Box struct {
	ID        string
	BatchID   string
	Code      string
	Status    GoodsStatus
	ScannedAt *time.Time
	ScannedBy *string // ID del operador
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCode indica si la caja ya tiene código generado.
func (b *Box) HasCode() bool {
	return b.Code != ""
}

// MarkScanned aplica la transición de un escaneo.
func (b *Box) MarkScanned(status GoodsStatus, operatorID string, at time.Time) {
	b.Status = status
	b.ScannedAt = &at
	b.ScannedBy = &operatorID
	b.UpdatedAt = at
}
