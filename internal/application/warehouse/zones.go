package warehouse

import (
	"context"
	"fmt"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

// resolveSeedZone busca una zona que debe existir por migración.
// Su ausencia es un error de configuración, no un NotFound del usuario.
func resolveSeedZone(ctx context.Context, zones repository.ZoneRepository, name string) (*entity.Zone, error) {
	zone, err := zones.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("%w: zona %s no existe", domain.ErrMissingSeedConfig, name)
	}
	return zone, nil
}
