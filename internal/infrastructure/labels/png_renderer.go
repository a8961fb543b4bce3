// Package labels implementa los renderers de etiquetas: PNG, ZIP, PDF y XLSX.
package labels

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
)

// Encoder genera la imagen PNG de un código.
type Encoder interface {
	Encode(content string, width, height int) ([]byte, error)
}

const (
	captionLines  = 3
	captionLineH  = 15
	captionMargin = 6
)

var _ applabels.Renderer = (*PNGRenderer)(nil)

// PNGRenderer dibuja cada etiqueta como código + leyenda; varias etiquetas se apilan en vertical.
type PNGRenderer struct {
	enc  Encoder
	size int
}

// NewPNGRenderer construye el renderer; size es el lado del código en píxeles.
func NewPNGRenderer(enc Encoder, size int) *PNGRenderer {
	return &PNGRenderer{enc: enc, size: size}
}

func (r *PNGRenderer) Format() applabels.Format { return applabels.FormatPNG }
func (r *PNGRenderer) ContentType() string      { return "image/png" }

// Render produce una sola imagen con todas las etiquetas de la hoja.
func (r *PNGRenderer) Render(ctx context.Context, sheet applabels.Sheet) ([]byte, error) {
	if len(sheet.Labels) == 0 {
		return nil, fmt.Errorf("png: hoja sin etiquetas")
	}
	labelH := r.labelHeight()
	canvas := image.NewRGBA(image.Rect(0, 0, r.size, labelH*len(sheet.Labels)))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	for i, l := range sheet.Labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.LabelImage(l)
		if err != nil {
			return nil, err
		}
		at := image.Pt(0, i*labelH)
		draw.Draw(canvas, img.Bounds().Add(at), img, image.Point{}, draw.Src)
	}
	return encodePNG(canvas)
}

// LabelImage etiqueta individual: el código arriba y tres líneas de texto abajo.
func (r *PNGRenderer) LabelImage(l applabels.Label) (image.Image, error) {
	raw, err := r.enc.Encode(l.Content, r.size, r.size)
	if err != nil {
		return nil, fmt.Errorf("png: código de la caja %s: %w", l.BoxID, err)
	}
	code, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("png: decodificar código: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, r.size, r.labelHeight()))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, code.Bounds(), code, code.Bounds().Min, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.Black), Face: basicfont.Face7x13}
	for i, line := range captionFor(l) {
		d.Dot = fixed.P(captionMargin, r.size+captionLineH*(i+1))
		d.DrawString(fit(line, (r.size-2*captionMargin)/basicfont.Face7x13.Advance))
	}
	return img, nil
}

func (r *PNGRenderer) labelHeight() int {
	return r.size + captionLines*captionLineH + captionMargin
}

func captionFor(l applabels.Label) [captionLines]string {
	return [captionLines]string{
		l.ProductName,
		fmt.Sprintf("Caja %d/%d", l.Index, l.TotalBoxes),
		shortID(l.BoxID),
	}
}

// fit recorta s a n caracteres.
func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}
