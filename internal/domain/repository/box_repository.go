package repository

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// BoxRepository define el puerto de persistencia para Box (DIP).
// Las búsquedas devuelven (nil, nil) cuando no existe el registro.
type BoxRepository interface {
	Create(ctx context.Context, box *entity.Box) error
	// CreateMany inserta en bloque las cajas de una partida.
	CreateMany(ctx context.Context, boxes []*entity.Box) error
	GetByID(ctx context.Context, id string) (*entity.Box, error)
	ListByBatch(ctx context.Context, batchID string) ([]*entity.Box, error)
	CountByBatch(ctx context.Context, batchID string) (int, error)
	CountByStatus(ctx context.Context, batchID string) (map[entity.GoodsStatus]int, error)
	Update(ctx context.Context, box *entity.Box) error
	Delete(ctx context.Context, id string) error
}
