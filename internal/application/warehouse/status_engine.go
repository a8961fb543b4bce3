package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	rules "github.com/jhoicas/citrus-stock/internal/domain/warehouse"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// StatusEngine deriva el estado y la zona de una partida a partir de sus cajas.
type StatusEngine struct {
	tx        TxRunner
	batchRepo repository.ProductBatchRepository
	boxRepo   repository.BoxRepository
	zoneRepo  repository.ZoneRepository
	metrics   Metrics
	log       *logger.Logger
}

// NewStatusEngine construye el motor de reconciliación.
func NewStatusEngine(
	tx TxRunner,
	batchRepo repository.ProductBatchRepository,
	boxRepo repository.BoxRepository,
	zoneRepo repository.ZoneRepository,
	metrics Metrics,
	log *logger.Logger,
) *StatusEngine {
	return &StatusEngine{tx: tx, batchRepo: batchRepo, boxRepo: boxRepo, zoneRepo: zoneRepo, metrics: metrics, log: log}
}

// ReconcileOutcome resultado de una reconciliación.
type ReconcileOutcome struct {
	Status   entity.GoodsStatus // estado de la partida al terminar
	Promoted bool               // hubo escritura
}

// ReconcileBatchStatus aplica la regla agregada en su propia transacción.
// Llamarla de nuevo con las mismas cajas no escribe nada.
func (e *StatusEngine) ReconcileBatchStatus(ctx context.Context, batchID string, targetZone *entity.Zone) (ReconcileOutcome, error) {
	if targetZone == nil || targetZone.ID == "" {
		return ReconcileOutcome{}, fmt.Errorf("%w: zona destino requerida", domain.ErrInvalidInput)
	}
	var out ReconcileOutcome
	err := e.tx.Run(ctx, func(tx TxRepos) error {
		var err error
		out, err = reconcile(ctx, tx, batchID, targetZone)
		return err
	})
	if err != nil {
		return ReconcileOutcome{}, err
	}
	if out.Promoted {
		e.metrics.BatchPromoted(out.Status)
		e.log.Info().Str("batch_id", batchID).Str("status", string(out.Status)).Str("zone", targetZone.Name).Msg("partida reconciliada")
	}
	return out, nil
}

// ReconcileToZone resuelve la zona por nombre y reconcilia (uso administrativo).
func (e *StatusEngine) ReconcileToZone(ctx context.Context, batchID, zoneName string) (ReconcileOutcome, error) {
	zone, err := e.zoneRepo.GetByName(ctx, zoneName)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	if zone == nil {
		return ReconcileOutcome{}, fmt.Errorf("%w: zona %s", domain.ErrNotFound, zoneName)
	}
	return e.ReconcileBatchStatus(ctx, batchID, zone)
}

// FindBatchesWithMixedBoxStatuses partidas (con más de una caja) cuyas cajas no comparten estado.
func (e *StatusEngine) FindBatchesWithMixedBoxStatuses(ctx context.Context) ([]*entity.ProductBatch, error) {
	return e.batchRepo.ListWithMixedBoxStatuses(ctx)
}

// BoxStatusHistogram cantidad de cajas por estado; incluye los estados en cero.
func (e *StatusEngine) BoxStatusHistogram(ctx context.Context, batchID string) (map[entity.GoodsStatus]int, error) {
	batch, err := e.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: partida %s", domain.ErrNotFound, batchID)
	}
	counts, err := e.boxRepo.CountByStatus(ctx, batchID)
	if err != nil {
		return nil, err
	}
	out := make(map[entity.GoodsStatus]int, len(entity.AllGoodsStatuses()))
	for _, st := range entity.AllGoodsStatuses() {
		out[st] = counts[st]
	}
	return out, nil
}

// reconcile lee la partida con bloqueo de fila y luego todas sus cajas, de modo que dos
// escaneos concurrentes de la misma partida se serializan y el segundo ve las cajas del primero.
func reconcile(ctx context.Context, tx TxRepos, batchID string, zone *entity.Zone) (ReconcileOutcome, error) {
	batch, err := tx.Batches.GetForUpdate(ctx, batchID)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	if batch == nil {
		return ReconcileOutcome{}, fmt.Errorf("%w: partida %s", domain.ErrNotFound, batchID)
	}
	boxes, err := tx.Boxes.ListByBatch(ctx, batchID)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	status, ok := rules.AggregateStatus(boxes)
	if !ok || !rules.NeedsUpdate(batch, status, zone.ID) {
		return ReconcileOutcome{Status: batch.Status}, nil
	}
	batch.Status = status
	batch.ZoneID = zone.ID
	batch.UpdatedAt = time.Now()
	if err := tx.Batches.Update(ctx, batch); err != nil {
		return ReconcileOutcome{}, err
	}
	return ReconcileOutcome{Status: status, Promoted: true}, nil
}
