package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

// UpdateBoxInput corrección administrativa de una caja.
type UpdateBoxInput struct {
	Code   *string
	Status *entity.GoodsStatus
}

// BoxUseCase consultas y administración de cajas.
type BoxUseCase struct {
	boxRepo   repository.BoxRepository
	batchRepo repository.ProductBatchRepository
	scanRepo  repository.ScanEventRepository
}

// NewBoxUseCase construye el caso de uso.
func NewBoxUseCase(
	boxRepo repository.BoxRepository,
	batchRepo repository.ProductBatchRepository,
	scanRepo repository.ScanEventRepository,
) *BoxUseCase {
	return &BoxUseCase{boxRepo: boxRepo, batchRepo: batchRepo, scanRepo: scanRepo}
}

// Create agrega una caja GENERATED a una partida existente.
func (uc *BoxUseCase) Create(ctx context.Context, batchID string) (*entity.Box, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: partida %s", domain.ErrNotFound, batchID)
	}
	now := time.Now()
	box := &entity.Box{
		ID:        uuid.New().String(),
		BatchID:   batch.ID,
		Status:    entity.GoodsStatusGenerated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.boxRepo.Create(ctx, box); err != nil {
		return nil, err
	}
	return box, nil
}

// Get obtiene una caja por ID.
func (uc *BoxUseCase) Get(ctx context.Context, id string) (*entity.Box, error) {
	box, err := uc.boxRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, fmt.Errorf("%w: caja %s", domain.ErrNotFound, id)
	}
	return box, nil
}

// ListByBatch cajas de una partida.
func (uc *BoxUseCase) ListByBatch(ctx context.Context, batchID string) ([]*entity.Box, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: partida %s", domain.ErrNotFound, batchID)
	}
	return uc.boxRepo.ListByBatch(ctx, batchID)
}

// Update aplica una corrección administrativa. No dispara la reconciliación de la partida.
func (uc *BoxUseCase) Update(ctx context.Context, id string, in UpdateBoxInput) (*entity.Box, error) {
	box, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Code != nil {
		box.Code = *in.Code
	}
	if in.Status != nil {
		box.Status = *in.Status
	}
	box.UpdatedAt = time.Now()
	if err := uc.boxRepo.Update(ctx, box); err != nil {
		return nil, err
	}
	return box, nil
}

// Delete elimina una caja.
func (uc *BoxUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.Get(ctx, id); err != nil {
		return err
	}
	return uc.boxRepo.Delete(ctx, id)
}

// GetCode devuelve el código guardado (base64 PNG). Sin código aún: ErrNotFound.
func (uc *BoxUseCase) GetCode(ctx context.Context, id string) (string, error) {
	box, err := uc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !box.HasCode() {
		return "", fmt.Errorf("%w: la caja %s no tiene código", domain.ErrNotFound, id)
	}
	return box.Code, nil
}

// ScanHistory eventos de escaneo de la caja, del más antiguo al más reciente.
func (uc *BoxUseCase) ScanHistory(ctx context.Context, id string) ([]*entity.ScanEvent, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}
	return uc.scanRepo.ListByBox(ctx, id)
}
