// Package codegen genera imágenes de códigos escaneables.
package codegen

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// QREncoder genera códigos QR en PNG.
type QREncoder struct {
	level qr.ErrorCorrectionLevel
}

// NewQREncoder construye el codificador con corrección de errores media.
func NewQREncoder() *QREncoder {
	return &QREncoder{level: qr.M}
}

// Encode codifica content y escala la imagen a width x height.
func (e *QREncoder) Encode(content string, width, height int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: contenido vacío")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("qr: tamaño inválido %dx%d", width, height)
	}
	code, err := qr.Encode(content, e.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("qr scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}
