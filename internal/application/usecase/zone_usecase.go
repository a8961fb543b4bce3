package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ZoneUseCase casos de uso CRUD para zonas.
type ZoneUseCase struct {
	repo repository.ZoneRepository
}

// NewZoneUseCase construye el caso de uso.
func NewZoneUseCase(repo repository.ZoneRepository) *ZoneUseCase {
	return &ZoneUseCase{repo: repo}
}

// Create crea una zona. El nombre se guarda en mayúsculas, como las sembradas.
func (uc *ZoneUseCase) Create(ctx context.Context, in dto.CreateZoneRequest) (*dto.ZoneResponse, error) {
	name := strings.ToUpper(strings.TrimSpace(in.Name))
	if name == "" {
		return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
	}
	if in.Color != "" && !hexColor.MatchString(in.Color) {
		return nil, fmt.Errorf("%w: color %q", domain.ErrInvalidInput, in.Color)
	}
	zone := &entity.Zone{
		ID:        uuid.New().String(),
		Name:      name,
		Color:     in.Color,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, zone); err != nil {
		return nil, err
	}
	out := dto.ToZoneResponse(zone)
	return &out, nil
}

func (uc *ZoneUseCase) GetByID(ctx context.Context, id string) (*dto.ZoneResponse, error) {
	zone, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToZoneResponse(zone)
	return &out, nil
}

func (uc *ZoneUseCase) Update(ctx context.Context, id string, in dto.UpdateZoneRequest) (*dto.ZoneResponse, error) {
	zone, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.ToUpper(strings.TrimSpace(*in.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
		}
		zone.Name = name
	}
	if in.Color != nil {
		if *in.Color != "" && !hexColor.MatchString(*in.Color) {
			return nil, fmt.Errorf("%w: color %q", domain.ErrInvalidInput, *in.Color)
		}
		zone.Color = *in.Color
	}
	if err := uc.repo.Update(ctx, zone); err != nil {
		return nil, err
	}
	out := dto.ToZoneResponse(zone)
	return &out, nil
}

func (uc *ZoneUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.ZoneResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ZoneResponse, 0, len(list))
	for _, z := range list {
		out = append(out, dto.ToZoneResponse(z))
	}
	return out, nil
}

// Delete elimina una zona. Si alguna partida la ocupa el repositorio devuelve ErrConflict.
func (uc *ZoneUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// Stats cantidad de partidas por zona, incluidas las vacías.
func (uc *ZoneUseCase) Stats(ctx context.Context) ([]dto.ZoneStatsResponse, error) {
	stats, err := uc.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToZoneStatsResponses(stats), nil
}

func (uc *ZoneUseCase) get(ctx context.Context, id string) (*entity.Zone, error) {
	zone, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, fmt.Errorf("%w: zona %s", domain.ErrNotFound, id)
	}
	return zone, nil
}
