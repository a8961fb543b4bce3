package repository

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// ZoneRepository define el puerto de persistencia para Zone (DIP).
type ZoneRepository interface {
	Create(ctx context.Context, zone *entity.Zone) error
	GetByID(ctx context.Context, id string) (*entity.Zone, error)
	GetByName(ctx context.Context, name string) (*entity.Zone, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Zone, error)
	Update(ctx context.Context, zone *entity.Zone) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]entity.ZoneStats, error)
}
