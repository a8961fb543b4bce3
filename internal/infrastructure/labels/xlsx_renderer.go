package labels

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
)

var _ applabels.Renderer = (*XLSXRenderer)(nil)

// ManifestHeader columnas de la hoja de manifiesto.
var ManifestHeader = []interface{}{
	"index", "box_id", "status", "product_id", "product_name", "batch_id", "zone", "scanned_at", "content",
}

// XLSXRenderer manifiesto de cajas en una hoja de cálculo, una fila por caja.
type XLSXRenderer struct{}

// NewXLSXRenderer construye el renderer.
func NewXLSXRenderer() *XLSXRenderer { return &XLSXRenderer{} }

func (r *XLSXRenderer) Format() applabels.Format { return applabels.FormatXLSX }
func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render escribe el encabezado en A1 y las cajas desde la fila 2.
func (r *XLSXRenderer) Render(ctx context.Context, sheet applabels.Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	header := ManifestHeader
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: encabezado: %w", err)
	}

	row := 2
	for _, l := range sheet.Labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scannedAt := ""
		if l.ScannedAt != nil {
			scannedAt = l.ScannedAt.UTC().Format(time.RFC3339)
		}
		excelRow := []interface{}{
			l.Index,
			l.BoxID,
			string(l.Status),
			l.ProductID,
			l.ProductName,
			l.BatchID,
			l.ZoneName,
			scannedAt,
			l.Content,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", row, err)
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
