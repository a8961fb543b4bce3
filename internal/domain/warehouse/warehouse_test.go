package warehouse_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/warehouse"
)

func boxes(statuses ...entity.GoodsStatus) []*entity.Box {
	out := make([]*entity.Box, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &entity.Box{Status: s})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// PolicyFor
// ──────────────────────────────────────────────────────────────────────────────

func TestPolicyFor_TablaDeDespacho(t *testing.T) {
	p, err := warehouse.PolicyFor(entity.ScanModeOnWarehouse)
	require.NoError(t, err)
	assert.Equal(t, entity.ZoneReceiving, p.TargetZone)
	assert.Equal(t, entity.GoodsStatusScanned, p.BoxStatus)
	assert.Equal(t, entity.GoodsStatusScanned, p.BatchStatus)

	p, err = warehouse.PolicyFor(entity.ScanModeShipment)
	require.NoError(t, err)
	assert.Equal(t, entity.ZoneShipment, p.TargetZone)
	assert.Equal(t, entity.GoodsStatusShipped, p.BoxStatus)
	assert.Equal(t, entity.GoodsStatusShipped, p.BatchStatus)
}

func TestPolicyFor_ModoDesconocidoFalla(t *testing.T) {
	_, err := warehouse.PolicyFor(entity.ScanMode("RETURN"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedScanMode)
}

// ──────────────────────────────────────────────────────────────────────────────
// AggregateStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregateStatus(t *testing.T) {
	cases := []struct {
		name   string
		boxes  []*entity.Box
		want   entity.GoodsStatus
		wantOK bool
	}{
		{"sin cajas", nil, "", false},
		{"todas generadas", boxes(entity.GoodsStatusGenerated, entity.GoodsStatusGenerated), "", false},
		{"todas escaneadas", boxes(entity.GoodsStatusScanned, entity.GoodsStatusScanned), entity.GoodsStatusScanned, true},
		{"todas despachadas", boxes(entity.GoodsStatusShipped), entity.GoodsStatusShipped, true},
		{"mezcla", boxes(entity.GoodsStatusScanned, entity.GoodsStatusGenerated), "", false},
		{"escaneada y despachada", boxes(entity.GoodsStatusScanned, entity.GoodsStatusShipped), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := warehouse.AggregateStatus(tc.boxes)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBoxCount_NormalizaAUno(t *testing.T) {
	zero, neg, five := 0, -3, 5
	assert.Equal(t, 1, warehouse.BoxCount(nil))
	assert.Equal(t, 1, warehouse.BoxCount(&zero))
	assert.Equal(t, 1, warehouse.BoxCount(&neg))
	assert.Equal(t, 5, warehouse.BoxCount(&five))
}

// ──────────────────────────────────────────────────────────────────────────────
// BuildLabelContent
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildLabelContent_Payload(t *testing.T) {
	content, err := warehouse.BuildLabelContent(warehouse.LabelSource{
		BoxID: "box-1", BatchID: "batch-1", ProductID: "p-1", ProductName: "Naranja", TotalBoxes: 3,
	})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(content), &payload))
	assert.Equal(t, "box-1", payload["boxId"])
	assert.Equal(t, "batch-1", payload["batchId"])
	assert.Equal(t, "p-1", payload["productId"])
	assert.Equal(t, "Naranja", payload["productName"])
	assert.EqualValues(t, 3, payload["totalBoxes"])
}

func TestBuildLabelContent_CampoFaltante(t *testing.T) {
	full := warehouse.LabelSource{BoxID: "b", BatchID: "x", ProductID: "p", ProductName: "n", TotalBoxes: 1}

	noProduct := full
	noProduct.ProductID = ""
	_, err := warehouse.BuildLabelContent(noProduct)
	require.ErrorIs(t, err, domain.ErrInvalidLabelContent)
	assert.Contains(t, err.Error(), "product")

	noCount := full
	noCount.TotalBoxes = 0
	_, err = warehouse.BuildLabelContent(noCount)
	require.ErrorIs(t, err, domain.ErrInvalidLabelContent)
	assert.Contains(t, err.Error(), "box count")
}
