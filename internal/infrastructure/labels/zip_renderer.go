package labels

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
)

var _ applabels.Renderer = (*ZipRenderer)(nil)

// ZipRenderer un PNG por caja dentro de un .zip.
type ZipRenderer struct {
	png *PNGRenderer
}

// NewZipRenderer construye el renderer sobre el de PNG.
func NewZipRenderer(png *PNGRenderer) *ZipRenderer {
	return &ZipRenderer{png: png}
}

func (r *ZipRenderer) Format() applabels.Format { return applabels.FormatZIP }
func (r *ZipRenderer) ContentType() string      { return "application/zip" }

// Render escribe las entradas caja-001-<id>.png, caja-002-<id>.png, ...
func (r *ZipRenderer) Render(ctx context.Context, sheet applabels.Sheet) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, l := range sheet.Labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.png.LabelImage(l)
		if err != nil {
			return nil, err
		}
		data, err := encodePNG(img)
		if err != nil {
			return nil, err
		}
		w, err := zw.Create(fmt.Sprintf("caja-%03d-%s.png", l.Index, l.BoxID))
		if err != nil {
			return nil, fmt.Errorf("zip: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("zip: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	return buf.Bytes(), nil
}
