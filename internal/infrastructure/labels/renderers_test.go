package labels_test

import (
	"archive/zip"
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	applabels "github.com/jhoicas/citrus-stock/internal/application/labels"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/codegen"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/labels"
)

func testSheet() applabels.Sheet {
	scanned := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return applabels.Sheet{
		Title:      "Naranja Valencia",
		BatchID:    "batch-1",
		ReceivedAt: scanned,
		Labels: []applabels.Label{
			{
				BoxID: "box-1", BatchID: "batch-1", ProductID: "p1", ProductName: "Naranja Valencia",
				ZoneName: entity.ZoneReceiving, Status: entity.GoodsStatusScanned, ScannedAt: &scanned,
				Index: 1, TotalBoxes: 2, Content: `{"boxId":"box-1"}`,
			},
			{
				BoxID: "box-2", BatchID: "batch-1", ProductID: "p1", ProductName: "Naranja Valencia",
				ZoneName: entity.ZoneReceiving, Status: entity.GoodsStatusGenerated,
				Index: 2, TotalBoxes: 2, Content: `{"boxId":"box-2"}`,
			},
		},
	}
}

// ── PNG ───────────────────────────────────────────────────────────────────────

func TestPNGRenderer_ApilaEtiquetas(t *testing.T) {
	r := labels.NewPNGRenderer(codegen.NewQREncoder(), 120)
	data, err := r.Render(context.Background(), testSheet())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	single, err := r.LabelImage(testSheet().Labels[0])
	require.NoError(t, err)

	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 2*single.Bounds().Dy(), img.Bounds().Dy())
	assert.Equal(t, "image/png", r.ContentType())
}

func TestPNGRenderer_HojaVacia(t *testing.T) {
	r := labels.NewPNGRenderer(codegen.NewQREncoder(), 120)
	_, err := r.Render(context.Background(), applabels.Sheet{})
	assert.Error(t, err)
}

// ── ZIP ───────────────────────────────────────────────────────────────────────

func TestZipRenderer_UnPNGPorCaja(t *testing.T) {
	r := labels.NewZipRenderer(labels.NewPNGRenderer(codegen.NewQREncoder(), 100))
	data, err := r.Render(context.Background(), testSheet())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "caja-001-box-1.png", zr.File[0].Name)
	assert.Equal(t, "caja-002-box-2.png", zr.File[1].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	_, err = png.Decode(rc)
	assert.NoError(t, err)
}

// ── PDF ───────────────────────────────────────────────────────────────────────

func TestPDFRenderer_GeneraPDF(t *testing.T) {
	r := labels.NewPDFRenderer("citrus-stock")
	data, err := r.Render(context.Background(), testSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, applabels.FormatPDF, r.Format())
}

// ── XLSX ──────────────────────────────────────────────────────────────────────

func TestXLSXRenderer_Manifiesto(t *testing.T) {
	r := labels.NewXLSXRenderer()
	data, err := r.Render(context.Background(), testSheet())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "box_id", rows[0][1])
	assert.Equal(t, []string{"1", "box-1", "SCANNED", "p1", "Naranja Valencia", "batch-1", "RECEIVING", "2024-03-01T10:00:00Z", `{"boxId":"box-1"}`}, rows[1])
	assert.Equal(t, "GENERATED", rows[2][2])
	assert.Equal(t, "", rows[2][7])
}

// ── Registry ──────────────────────────────────────────────────────────────────

func TestRegistry_FormatosDisponibles(t *testing.T) {
	pngR := labels.NewPNGRenderer(codegen.NewQREncoder(), 100)
	reg := applabels.NewRegistry(pngR, labels.NewZipRenderer(pngR), labels.NewPDFRenderer("x"), labels.NewXLSXRenderer())

	assert.Equal(t, []applabels.Format{applabels.FormatPDF, applabels.FormatPNG, applabels.FormatXLSX, applabels.FormatZIP}, reg.Formats())
	_, err := reg.Get("gif")
	assert.Error(t, err)
}
