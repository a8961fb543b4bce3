// Package labels arma las hojas de etiquetas de cajas y las delega al renderer del formato pedido.
package labels

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// Format formato de salida de etiquetas.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatZIP  Format = "zip"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normaliza el parámetro ?format=. Vacío equivale a PDF.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatPNG, FormatZIP, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: formato de etiqueta %q", domain.ErrInvalidInput, s)
}

// Label datos impresos en la etiqueta de una caja.
type Label struct {
	BoxID       string
	BatchID     string
	ProductID   string
	ProductName string
	ZoneName    string
	Status      entity.GoodsStatus
	ScannedAt   *time.Time
	Index       int // posición 1..TotalBoxes dentro de la partida
	TotalBoxes  int
	Content     string // payload JSON que va en el código
}

// Sheet conjunto de etiquetas de una misma partida.
type Sheet struct {
	Title      string
	BatchID    string
	ReceivedAt time.Time
	Labels     []Label
}

// Renderer convierte una hoja en bytes de un formato concreto.
type Renderer interface {
	Format() Format
	ContentType() string
	Render(ctx context.Context, sheet Sheet) ([]byte, error)
}

// Document archivo listo para descargar.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Registry renderers disponibles por formato.
type Registry struct {
	renderers map[Format]Renderer
}

// NewRegistry registra los renderers; uno posterior reemplaza al anterior del mismo formato.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[Format]Renderer, len(renderers))}
	for _, rd := range renderers {
		r.renderers[rd.Format()] = rd
	}
	return r
}

// Get devuelve el renderer del formato o ErrInvalidInput si no hay.
func (r *Registry) Get(f Format) (Renderer, error) {
	rd, ok := r.renderers[f]
	if !ok {
		return nil, fmt.Errorf("%w: formato %s no disponible", domain.ErrInvalidInput, f)
	}
	return rd, nil
}

// Formats formatos registrados, ordenados.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.renderers))
	for f := range r.renderers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
