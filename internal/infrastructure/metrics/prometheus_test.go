package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/metrics"
)

func TestWarehouse_Contadores(t *testing.T) {
	m := metrics.NewWarehouse(prometheus.NewRegistry())

	m.ScanRecorded(entity.ScanModeOnWarehouse)
	m.ScanRecorded(entity.ScanModeOnWarehouse)
	m.ScanRecorded(entity.ScanModeShipment)
	m.BatchPromoted(entity.GoodsStatusScanned)
	m.CodeGenerationFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Scans(entity.ScanModeOnWarehouse)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scans(entity.ScanModeShipment)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Promotions(entity.GoodsStatusScanned)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CodeFailures()))
}

func TestWarehouse_BatchCreated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWarehouse(reg)
	m.BatchCreated(4)
	m.BatchCreated(1)

	count, err := testutil.GatherAndCount(reg, "citrusstock_boxes_created_total", "citrusstock_batches_created_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
