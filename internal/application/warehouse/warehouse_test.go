package warehouse_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/citrus-stock/internal/application/warehouse"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/memory"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles
// ──────────────────────────────────────────────────────────────────────────────

type fakeEncoder struct {
	err      error
	contents []string
}

func (f *fakeEncoder) Encode(content string, _, _ int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.contents = append(f.contents, content)
	return []byte("png:" + content), nil
}

type recordingMetrics struct {
	mu           sync.Mutex
	scans        map[entity.ScanMode]int
	promotions   map[entity.GoodsStatus]int
	codeFailures int
	batches      int
	boxes        int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{scans: map[entity.ScanMode]int{}, promotions: map[entity.GoodsStatus]int{}}
}

func (m *recordingMetrics) ScanRecorded(mode entity.ScanMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[mode]++
}

func (m *recordingMetrics) BatchPromoted(status entity.GoodsStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions[status]++
}

func (m *recordingMetrics) CodeGenerationFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codeFailures++
}

func (m *recordingMetrics) BatchCreated(boxes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.boxes += boxes
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	batches  *memory.ProductBatchRepo
	boxes    *memory.BoxRepo
	zones    *memory.ZoneRepo
	events   *memory.ScanEventRepo
	products *memory.ProductRepo
	metrics  *recordingMetrics
	encoder  *fakeEncoder

	batchUC *warehouse.BatchUseCase
	boxUC   *warehouse.BoxUseCase
	scanUC  *warehouse.ScanUseCase
	engine  *warehouse.StatusEngine

	operatorID string
	productID  string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	s.Seed(ctx)

	f := &fixture{
		store:    s,
		batches:  memory.NewProductBatchRepository(s),
		boxes:    memory.NewBoxRepository(s),
		zones:    memory.NewZoneRepository(s),
		events:   memory.NewScanEventRepository(s),
		products: memory.NewProductRepository(s),
		metrics:  newRecordingMetrics(),
		encoder:  &fakeEncoder{},
	}
	users := memory.NewUserRepository(s)
	suppliers := memory.NewSupplierRepository(s)
	log := logger.Nop()

	f.batchUC = warehouse.NewBatchUseCase(s, f.batches, f.boxes, f.products, suppliers, f.metrics, log)
	f.boxUC = warehouse.NewBoxUseCase(f.boxes, f.batches, f.events)
	f.engine = warehouse.NewStatusEngine(s, f.batches, f.boxes, f.zones, f.metrics, log)
	resolver := warehouse.NewLabelResolver(f.batches, f.boxes, f.products)
	f.scanUC = warehouse.NewScanUseCase(s, f.boxes, users, resolver, f.encoder, 32, f.metrics, log)

	role, err := memory.NewRoleRepository(s).GetByName(ctx, entity.RoleOperator)
	require.NoError(t, err)
	now := time.Now()
	op := &entity.User{ID: "op-1", Username: "operario", PasswordHash: "x", RoleID: role.ID, Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, op))
	f.operatorID = op.ID

	p := &entity.Product{ID: "prod-1", Name: "Naranja Valencia", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.products.Create(ctx, p))
	f.productID = p.ID
	return f
}

func (f *fixture) newBatch(t *testing.T, productID string, count int) *entity.ProductBatch {
	t.Helper()
	b, err := f.batchUC.CreateBatch(context.Background(), warehouse.CreateBatchInput{ProductID: productID, BoxCount: &count})
	require.NoError(t, err)
	return b
}

// removeZone simula una base sin la zona sembrada. La zona no debe tener partidas.
func (f *fixture) removeZone(t *testing.T, name string) {
	t.Helper()
	ctx := context.Background()
	z, err := f.zones.GetByName(ctx, name)
	require.NoError(t, err)
	require.NotNil(t, z)
	require.NoError(t, f.zones.Delete(ctx, z.ID))
}

func (f *fixture) scan(t *testing.T, boxID string, mode entity.ScanMode) *warehouse.ScanResult {
	t.Helper()
	res, err := f.scanUC.ScanBox(context.Background(), boxID, f.operatorID, mode)
	require.NoError(t, err)
	return res
}

func (f *fixture) zoneName(t *testing.T, zoneID string) string {
	t.Helper()
	z, err := f.zones.GetByID(context.Background(), zoneID)
	require.NoError(t, err)
	require.NotNil(t, z)
	return z.Name
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateBatch
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBatch_EnRecepcionConCajasGeneradas(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 3)

	assert.Equal(t, entity.GoodsStatusGenerated, b.Status)
	assert.Equal(t, entity.ZoneReceiving, f.zoneName(t, b.ZoneID))
	require.Len(t, b.Boxes, 3)
	for _, box := range b.Boxes {
		assert.Equal(t, entity.GoodsStatusGenerated, box.Status)
		assert.False(t, box.HasCode())
	}
	assert.Equal(t, 1, f.metrics.batches)
	assert.Equal(t, 3, f.metrics.boxes)
}

func TestCreateBatch_CantidadAusenteOInvalidaCreaUnaCaja(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	b, err := f.batchUC.CreateBatch(ctx, warehouse.CreateBatchInput{})
	require.NoError(t, err)
	assert.Len(t, b.Boxes, 1)

	zero := 0
	b, err = f.batchUC.CreateBatch(ctx, warehouse.CreateBatchInput{BoxCount: &zero})
	require.NoError(t, err)
	assert.Len(t, b.Boxes, 1)

	neg := -4
	b, err = f.batchUC.CreateBatch(ctx, warehouse.CreateBatchInput{BoxCount: &neg})
	require.NoError(t, err)
	assert.Len(t, b.Boxes, 1)
}

func TestCreateBatch_ProductoInexistente(t *testing.T) {
	f := setup(t)
	_, err := f.batchUC.CreateBatch(context.Background(), warehouse.CreateBatchInput{ProductID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBatch_SinZonaRecepcionNoEscribeNada(t *testing.T) {
	f := setup(t)
	f.removeZone(t, entity.ZoneReceiving)

	_, err := f.batchUC.CreateBatch(context.Background(), warehouse.CreateBatchInput{})
	require.ErrorIs(t, err, domain.ErrMissingSeedConfig)

	n, err := f.batches.Count(context.Background(), entity.BatchFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

// ──────────────────────────────────────────────────────────────────────────────
// ScanBox
// ──────────────────────────────────────────────────────────────────────────────

func TestScanBox_TresCajasPromueveAlUltimoEscaneo(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 3)

	r1 := f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	assert.Equal(t, entity.GoodsStatusGenerated, r1.BatchStatus)
	assert.False(t, r1.BatchPromoted)

	r2 := f.scan(t, b.Boxes[1].ID, entity.ScanModeOnWarehouse)
	assert.False(t, r2.BatchPromoted)

	r3 := f.scan(t, b.Boxes[2].ID, entity.ScanModeOnWarehouse)
	assert.True(t, r3.BatchPromoted)
	assert.Equal(t, entity.GoodsStatusScanned, r3.BatchStatus)

	got, err := f.batchUC.GetBatch(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusScanned, got.Status)
	assert.Equal(t, entity.ZoneReceiving, f.zoneName(t, got.ZoneID))
	assert.Equal(t, 3, f.events.Len())
	assert.Equal(t, 3, f.metrics.scans[entity.ScanModeOnWarehouse])
	assert.Equal(t, 1, f.metrics.promotions[entity.GoodsStatusScanned])
}

func TestScanBox_OrdenDeEscaneoNoImporta(t *testing.T) {
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}
	for _, order := range orders {
		f := setup(t)
		b := f.newBatch(t, f.productID, 3)
		var last *warehouse.ScanResult
		for _, i := range order {
			last = f.scan(t, b.Boxes[i].ID, entity.ScanModeShipment)
		}
		assert.True(t, last.BatchPromoted, "orden %v", order)
		assert.Equal(t, entity.GoodsStatusShipped, last.BatchStatus)

		got, err := f.batches.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ZoneShipment, f.zoneName(t, got.ZoneID))
	}
}

func TestScanBox_EstadosMixtosNoCambianLaPartida(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 2)

	f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	res := f.scan(t, b.Boxes[1].ID, entity.ScanModeShipment)
	assert.False(t, res.BatchPromoted)
	assert.Equal(t, entity.GoodsStatusGenerated, res.BatchStatus)

	mixed, err := f.engine.FindBatchesWithMixedBoxStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, mixed, 1)
	assert.Equal(t, b.ID, mixed[0].ID)
}

func TestScanBox_RegistraOperadorYEvento(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)

	res := f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	require.NotNil(t, res.Event)
	assert.Equal(t, f.operatorID, res.Event.UserID)
	assert.Equal(t, entity.ScanModeOnWarehouse, res.Event.Mode)
	require.NotNil(t, res.Box.ScannedBy)
	assert.Equal(t, f.operatorID, *res.Box.ScannedBy)
	assert.NotNil(t, res.Box.ScannedAt)

	history, err := f.boxUC.ScanHistory(context.Background(), b.Boxes[0].ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestScanBox_GeneraCodigoSoloUnaVez(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)
	boxID := b.Boxes[0].ID

	first := f.scan(t, boxID, entity.ScanModeOnWarehouse)
	assert.False(t, first.CodeStep.Skipped)
	assert.False(t, first.CodeStep.Failed())

	code, err := f.boxUC.GetCode(context.Background(), boxID)
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(code)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"boxId":"`+boxID+`"`)
	assert.Contains(t, string(raw), `"productName":"Naranja Valencia"`)

	second := f.scan(t, boxID, entity.ScanModeShipment)
	assert.True(t, second.CodeStep.Skipped)
	assert.Len(t, f.encoder.contents, 1)

	again, err := f.boxUC.GetCode(context.Background(), boxID)
	require.NoError(t, err)
	assert.Equal(t, code, again)
}

func TestScanBox_FalloDeCodigoNoBloqueaElEscaneo(t *testing.T) {
	f := setup(t)
	f.encoder.err = errors.New("encoder caído")
	b := f.newBatch(t, f.productID, 1)

	res := f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	assert.True(t, res.CodeStep.Failed())
	assert.Equal(t, entity.GoodsStatusScanned, res.Box.Status)
	assert.True(t, res.BatchPromoted)
	assert.Equal(t, 1, f.metrics.codeFailures)

	_, err := f.boxUC.GetCode(context.Background(), b.Boxes[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanBox_SinProductoElCodigoFallaPeroElEscaneoSigue(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, "", 1)

	res := f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	require.True(t, res.CodeStep.Failed())
	assert.ErrorIs(t, res.CodeStep.Err, domain.ErrInvalidLabelContent)
	assert.Equal(t, 1, f.events.Len())
}

func TestScanBox_ModoNoSoportado(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)

	_, err := f.scanUC.ScanBox(context.Background(), b.Boxes[0].ID, f.operatorID, entity.ScanMode("RETURN"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedScanMode)
	assert.Zero(t, f.events.Len())
}

func TestScanBox_CajaInexistente(t *testing.T) {
	f := setup(t)
	_, err := f.scanUC.ScanBox(context.Background(), "no-existe", f.operatorID, entity.ScanModeOnWarehouse)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanBox_OperadorInexistenteNoEscribe(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)

	_, err := f.scanUC.ScanBox(context.Background(), b.Boxes[0].ID, "fantasma", entity.ScanModeOnWarehouse)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	box, err := f.boxes.GetByID(context.Background(), b.Boxes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusGenerated, box.Status)
	assert.Zero(t, f.events.Len())
}

func TestScanBox_SinZonaDestinoRevierteTodo(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)
	f.removeZone(t, entity.ZoneShipment)

	_, err := f.scanUC.ScanBox(context.Background(), b.Boxes[0].ID, f.operatorID, entity.ScanModeShipment)
	require.ErrorIs(t, err, domain.ErrMissingSeedConfig)

	box, err := f.boxes.GetByID(context.Background(), b.Boxes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusGenerated, box.Status)
	assert.Nil(t, box.ScannedBy)
	assert.Zero(t, f.events.Len())
	assert.Zero(t, f.metrics.scans[entity.ScanModeShipment])
}

func TestScanBox_ReescanearCajaRegistraOtroEvento(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)

	f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	res := f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)
	assert.False(t, res.BatchPromoted)
	assert.Equal(t, entity.GoodsStatusScanned, res.BatchStatus)
	assert.Equal(t, 2, f.events.Len())
}

// ──────────────────────────────────────────────────────────────────────────────
// StatusEngine
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_PartidaSinCajasNoCambia(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 1)
	require.NoError(t, f.boxUC.Delete(ctx, b.Boxes[0].ID))

	out, err := f.engine.ReconcileToZone(ctx, b.ID, entity.ZoneShipment)
	require.NoError(t, err)
	assert.False(t, out.Promoted)
	assert.Equal(t, entity.GoodsStatusGenerated, out.Status)

	got, err := f.batches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ZoneReceiving, f.zoneName(t, got.ZoneID))
}

func TestReconcile_EsIdempotente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 2)
	for _, box := range b.Boxes {
		st := entity.GoodsStatusShipped
		_, err := f.boxUC.Update(ctx, box.ID, warehouse.UpdateBoxInput{Status: &st})
		require.NoError(t, err)
	}

	first, err := f.engine.ReconcileToZone(ctx, b.ID, entity.ZoneShipment)
	require.NoError(t, err)
	assert.True(t, first.Promoted)

	second, err := f.engine.ReconcileToZone(ctx, b.ID, entity.ZoneShipment)
	require.NoError(t, err)
	assert.False(t, second.Promoted)
	assert.Equal(t, entity.GoodsStatusShipped, second.Status)
	assert.Equal(t, 1, f.metrics.promotions[entity.GoodsStatusShipped])
}

func TestReconcile_CajasStickedNoPromueven(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 1)
	st := entity.GoodsStatusSticked
	_, err := f.boxUC.Update(ctx, b.Boxes[0].ID, warehouse.UpdateBoxInput{Status: &st})
	require.NoError(t, err)

	out, err := f.engine.ReconcileToZone(ctx, b.ID, entity.ZoneStorage)
	require.NoError(t, err)
	assert.False(t, out.Promoted)
}

func TestReconcile_ZonaDesconocida(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)
	_, err := f.engine.ReconcileToZone(context.Background(), b.ID, "LIMBO")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_ZonaNilEsEntradaInvalida(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)
	_, err := f.engine.ReconcileBatchStatus(context.Background(), b.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistogram_IncluyeEstadosEnCero(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 3)
	f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)

	h, err := f.engine.BoxStatusHistogram(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, h, len(entity.AllGoodsStatuses()))
	assert.Equal(t, 2, h[entity.GoodsStatusGenerated])
	assert.Equal(t, 1, h[entity.GoodsStatusScanned])
	assert.Zero(t, h[entity.GoodsStatusShipped])
}

func TestHistogram_PartidaInexistente(t *testing.T) {
	f := setup(t)
	_, err := f.engine.BoxStatusHistogram(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración
// ──────────────────────────────────────────────────────────────────────────────

func TestOverrideStatus_CambiaEstadoYZona(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)

	got, err := f.batchUC.OverrideStatus(context.Background(), b.ID, entity.GoodsStatusSticked, entity.ZoneStorage)
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusSticked, got.Status)
	assert.Equal(t, entity.ZoneStorage, f.zoneName(t, got.ZoneID))
}

func TestOverrideStatus_ZonaDesconocidaNoEscribe(t *testing.T) {
	f := setup(t)
	b := f.newBatch(t, f.productID, 1)

	_, err := f.batchUC.OverrideStatus(context.Background(), b.ID, entity.GoodsStatusShipped, "LIMBO")
	require.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.batches.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusGenerated, got.Status)
}

func TestListBatches_FiltraYCuenta(t *testing.T) {
	f := setup(t)
	f.newBatch(t, f.productID, 1)
	f.newBatch(t, f.productID, 1)
	f.newBatch(t, "", 1)

	list, total, err := f.batchUC.ListBatches(context.Background(), entity.BatchFilter{ProductID: f.productID}, 1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, total)
}

func TestDeleteBatch_BorraCajasYEventos(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 2)
	f.scan(t, b.Boxes[0].ID, entity.ScanModeOnWarehouse)

	require.NoError(t, f.batchUC.DeleteBatch(ctx, b.ID))
	_, err := f.boxUC.Get(ctx, b.Boxes[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.events.Len())

	assert.ErrorIs(t, f.batchUC.DeleteBatch(ctx, b.ID), domain.ErrNotFound)
}

func TestBoxCreate_AgregaCajaAPartidaExistente(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 1)

	box, err := f.boxUC.Create(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GoodsStatusGenerated, box.Status)

	list, err := f.boxUC.ListByBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.boxUC.Create(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanBox_FalloNoBorraEscriturasAjenas(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 1)

	// una caja creada fuera de la transacción mientras otra falla
	var added string
	errTx := errors.New("fallo en la transacción")
	err := f.store.Run(ctx, func(tx warehouse.TxRepos) error {
		box, err := f.boxUC.Create(ctx, b.ID)
		require.NoError(t, err)
		added = box.ID
		return errTx
	})
	require.ErrorIs(t, err, errTx)

	got, err := f.boxUC.Get(ctx, added)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.BatchID)
}

func TestScanBox_SinZonaDestinoConservaCajaNueva(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	b := f.newBatch(t, f.productID, 1)
	f.removeZone(t, entity.ZoneShipment)

	extra, err := f.boxUC.Create(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.scanUC.ScanBox(ctx, b.Boxes[0].ID, f.operatorID, entity.ScanModeShipment)
	require.ErrorIs(t, err, domain.ErrMissingSeedConfig)

	list, err := f.boxUC.ListByBatch(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, extra.ID, list[1].ID)
	assert.Equal(t, entity.GoodsStatusGenerated, list[0].Status)
}
