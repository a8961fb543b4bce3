package usecase

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	"github.com/jhoicas/citrus-stock/pkg/i18n"
)

var statusColors = map[entity.GoodsStatus]string{
	entity.GoodsStatusGenerated: "#9E9E9E",
	entity.GoodsStatusSticked:   "#795548",
	entity.GoodsStatusScanned:   "#2196F3",
	entity.GoodsStatusShipped:   "#4CAF50",
}

// LookupUseCase listas cerradas traducidas al idioma del cliente.
type LookupUseCase struct {
	zones repository.ZoneRepository
}

// NewLookupUseCase construye el caso de uso.
func NewLookupUseCase(zones repository.ZoneRepository) *LookupUseCase {
	return &LookupUseCase{zones: zones}
}

// GoodsStatuses estados en orden de progresión.
func (uc *LookupUseCase) GoodsStatuses(acceptLanguage string) dto.LookupResponse {
	loc := i18n.FromAcceptLanguage(acceptLanguage)
	items := make([]dto.LookupItem, 0, 4)
	for _, s := range entity.AllGoodsStatuses() {
		items = append(items, dto.LookupItem{Value: string(s), Label: loc.Text(string(s)), Color: statusColors[s]})
	}
	return dto.LookupResponse{Lang: loc.Lang(), Items: items}
}

func (uc *LookupUseCase) ScanModes(acceptLanguage string) dto.LookupResponse {
	loc := i18n.FromAcceptLanguage(acceptLanguage)
	items := make([]dto.LookupItem, 0, 2)
	for _, m := range entity.AllScanModes() {
		items = append(items, dto.LookupItem{Value: string(m), Label: loc.Text(string(m))})
	}
	return dto.LookupResponse{Lang: loc.Lang(), Items: items}
}

// Zones zonas registradas con su color. Las zonas creadas por el usuario no tienen traducción.
func (uc *LookupUseCase) Zones(ctx context.Context, acceptLanguage string) (*dto.LookupResponse, error) {
	loc := i18n.FromAcceptLanguage(acceptLanguage)
	zones, err := uc.zones.List(ctx, dto.MaxLimit, 0)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LookupItem, 0, len(zones))
	for _, z := range zones {
		items = append(items, dto.LookupItem{Value: z.Name, Label: loc.Text(z.Name), Color: z.Color})
	}
	return &dto.LookupResponse{Lang: loc.Lang(), Items: items}, nil
}
