package labels

// Layout de la hoja A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto             │  Partida + Fecha recepción  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  QR  │ Producto / Caja i de n / Partida / Estado            │
//	│  QR  │ ...                                                   │
//	└─────────────────────────────────────────────────────────────┘

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
)

var (
	colorPrimary = &props.Color{Red: 46, Green: 125, Blue: 50}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ applabels.Renderer = (*PDFRenderer)(nil)

// PDFRenderer hoja A4 con una fila por caja.
type PDFRenderer struct {
	author string
}

// NewPDFRenderer construye el renderer; author va en los metadatos del PDF.
func NewPDFRenderer(author string) *PDFRenderer { return &PDFRenderer{author: author} }

func (r *PDFRenderer) Format() applabels.Format { return applabels.FormatPDF }
func (r *PDFRenderer) ContentType() string      { return "application/pdf" }

// Render genera el PDF y devuelve sus bytes.
func (r *PDFRenderer) Render(ctx context.Context, sheet applabels.Sheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Etiquetas "+sheet.Title, true).
		WithAuthor(r.author, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(sheet))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	for _, l := range sheet.Labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.AddRows(labelRow(l))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: producto (izq) y partida + fecha de recepción (der).
func headerRow(sheet applabels.Sheet) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(nonEmpty(sheet.Title, "Sin producto"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%d cajas", len(sheet.Labels)), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PARTIDA "+sheet.BatchID, props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Top: 1,
			}),
			text.New("Recibida: "+sheet.ReceivedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// labelRow: código a la izquierda y datos de la caja a la derecha.
func labelRow(l applabels.Label) core.Row {
	return row.New(45).Add(
		col.New(4).Add(code.NewQr(l.Content, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New(l.ProductName, props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 4, Left: 3,
			}),
			text.New(fmt.Sprintf("Caja %d de %d", l.Index, l.TotalBoxes), props.Text{
				Size: 10, Top: 13, Left: 3, Color: colorPrimary,
			}),
			text.New("Caja: "+l.BoxID, props.Text{
				Size: 7, Top: 22, Left: 3, Color: colorGray,
			}),
			text.New("Partida: "+l.BatchID, props.Text{
				Size: 7, Top: 27, Left: 3, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Estado: %s   |   Zona: %s", l.Status, nonEmpty(l.ZoneName, "-")), props.Text{
				Size: 7, Top: 32, Left: 3, Color: colorGray,
			}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
