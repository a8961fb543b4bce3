package repository

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// ProductBatchRepository define el puerto de persistencia para ProductBatch (DIP).
type ProductBatchRepository interface {
	Create(ctx context.Context, batch *entity.ProductBatch) error
	GetByID(ctx context.Context, id string) (*entity.ProductBatch, error)
	// GetForUpdate obtiene la partida bloqueando la fila (SELECT ... FOR UPDATE).
	// Solo tiene efecto dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.ProductBatch, error)
	Update(ctx context.Context, batch *entity.ProductBatch) error
	// Delete elimina la partida; sus cajas se borran en cascada.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entity.BatchFilter, limit, offset int) ([]*entity.ProductBatch, error)
	Count(ctx context.Context, filter entity.BatchFilter) (int, error)
	// ListWithMixedBoxStatuses partidas con más de una caja cuyas cajas no comparten estado.
	ListWithMixedBoxStatuses(ctx context.Context) ([]*entity.ProductBatch, error)
}
