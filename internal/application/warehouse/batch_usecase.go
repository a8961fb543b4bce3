package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	rules "github.com/jhoicas/citrus-stock/internal/domain/warehouse"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// CreateBatchInput datos para registrar una partida. Todos los campos son opcionales.
type CreateBatchInput struct {
	ProductID  string
	SupplierID string
	BoxCount   *int
	ReceivedAt *time.Time
}

// UpdateBatchInput cambios administrativos; nil = sin cambio, "" = quitar la referencia.
type UpdateBatchInput struct {
	ProductID  *string
	SupplierID *string
	ReceivedAt *time.Time
}

// BatchUseCase registro y administración de partidas.
type BatchUseCase struct {
	tx           TxRunner
	batchRepo    repository.ProductBatchRepository
	boxRepo      repository.BoxRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	metrics      Metrics
	log          *logger.Logger
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(
	tx TxRunner,
	batchRepo repository.ProductBatchRepository,
	boxRepo repository.BoxRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	metrics Metrics,
	log *logger.Logger,
) *BatchUseCase {
	return &BatchUseCase{
		tx:           tx,
		batchRepo:    batchRepo,
		boxRepo:      boxRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		metrics:      metrics,
		log:          log,
	}
}

// CreateBatch registra la partida en la zona RECEIVING con estado GENERATED y crea
// max(BoxCount, 1) cajas. Partida y cajas se insertan en la misma transacción.
func (uc *BatchUseCase) CreateBatch(ctx context.Context, in CreateBatchInput) (*entity.ProductBatch, error) {
	if err := uc.checkReferences(ctx, in.ProductID, in.SupplierID); err != nil {
		return nil, err
	}

	now := time.Now()
	receivedAt := now
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}
	batch := &entity.ProductBatch{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		SupplierID: in.SupplierID,
		Status:     entity.GoodsStatusGenerated,
		ReceivedAt: receivedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	count := rules.BoxCount(in.BoxCount)

	err := uc.tx.Run(ctx, func(tx TxRepos) error {
		zone, err := resolveSeedZone(ctx, tx.Zones, entity.ZoneReceiving)
		if err != nil {
			return err
		}
		batch.ZoneID = zone.ID
		if err := tx.Batches.Create(ctx, batch); err != nil {
			return err
		}
		boxes := make([]*entity.Box, 0, count)
		for i := 0; i < count; i++ {
			boxes = append(boxes, &entity.Box{
				ID:        uuid.New().String(),
				BatchID:   batch.ID,
				Status:    entity.GoodsStatusGenerated,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		if err := tx.Boxes.CreateMany(ctx, boxes); err != nil {
			return err
		}
		batch.Boxes = boxes
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.BatchCreated(count)
	uc.log.Info().Str("batch_id", batch.ID).Int("boxes", count).Msg("partida registrada")
	return batch, nil
}

// GetBatch devuelve la partida con sus cajas.
func (uc *BatchUseCase) GetBatch(ctx context.Context, id string) (*entity.ProductBatch, error) {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: partida %s", domain.ErrNotFound, id)
	}
	boxes, err := uc.boxRepo.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	batch.Boxes = boxes
	return batch, nil
}

// ListBatches lista partidas filtradas con paginación; devuelve también el total.
func (uc *BatchUseCase) ListBatches(ctx context.Context, filter entity.BatchFilter, limit, offset int) ([]*entity.ProductBatch, int, error) {
	list, err := uc.batchRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.batchRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateBatch cambia producto, proveedor o fecha de recepción. El estado no se toca aquí.
func (uc *BatchUseCase) UpdateBatch(ctx context.Context, id string, in UpdateBatchInput) (*entity.ProductBatch, error) {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: partida %s", domain.ErrNotFound, id)
	}
	var productID, supplierID string
	if in.ProductID != nil {
		productID = *in.ProductID
	}
	if in.SupplierID != nil {
		supplierID = *in.SupplierID
	}
	if err := uc.checkReferences(ctx, productID, supplierID); err != nil {
		return nil, err
	}
	if in.ProductID != nil {
		batch.ProductID = *in.ProductID
	}
	if in.SupplierID != nil {
		batch.SupplierID = *in.SupplierID
	}
	if in.ReceivedAt != nil {
		batch.ReceivedAt = *in.ReceivedAt
	}
	batch.UpdatedAt = time.Now()
	if err := uc.batchRepo.Update(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// OverrideStatus corrección administrativa del estado (y opcionalmente la zona) de la partida.
func (uc *BatchUseCase) OverrideStatus(ctx context.Context, id string, status entity.GoodsStatus, zoneName string) (*entity.ProductBatch, error) {
	var out *entity.ProductBatch
	err := uc.tx.Run(ctx, func(tx TxRepos) error {
		batch, err := tx.Batches.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: partida %s", domain.ErrNotFound, id)
		}
		if zoneName != "" {
			zone, err := tx.Zones.GetByName(ctx, zoneName)
			if err != nil {
				return err
			}
			if zone == nil {
				return fmt.Errorf("%w: zona %s", domain.ErrNotFound, zoneName)
			}
			batch.ZoneID = zone.ID
		}
		batch.Status = status
		batch.UpdatedAt = time.Now()
		if err := tx.Batches.Update(ctx, batch); err != nil {
			return err
		}
		out = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Warn().Str("batch_id", id).Str("status", string(status)).Msg("estado de partida forzado")
	return out, nil
}

// DeleteBatch elimina la partida y, en cascada, sus cajas.
func (uc *BatchUseCase) DeleteBatch(ctx context.Context, id string) error {
	batch, err := uc.batchRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if batch == nil {
		return fmt.Errorf("%w: partida %s", domain.ErrNotFound, id)
	}
	return uc.batchRepo.Delete(ctx, id)
}

func (uc *BatchUseCase) checkReferences(ctx context.Context, productID, supplierID string) error {
	if productID != "" {
		p, err := uc.productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
	}
	if supplierID != "" {
		s, err := uc.supplierRepo.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, supplierID)
		}
	}
	return nil
}
