package labels

import (
	"context"
	"fmt"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	rules "github.com/jhoicas/citrus-stock/internal/domain/warehouse"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// UseCase genera etiquetas de una partida completa o de una caja.
type UseCase struct {
	batchRepo   repository.ProductBatchRepository
	boxRepo     repository.BoxRepository
	productRepo repository.ProductRepository
	zoneRepo    repository.ZoneRepository
	registry    *Registry
	log         *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	batchRepo repository.ProductBatchRepository,
	boxRepo repository.BoxRepository,
	productRepo repository.ProductRepository,
	zoneRepo repository.ZoneRepository,
	registry *Registry,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		batchRepo:   batchRepo,
		boxRepo:     boxRepo,
		productRepo: productRepo,
		zoneRepo:    zoneRepo,
		registry:    registry,
		log:         log,
	}
}

// ForBatch etiquetas de todas las cajas de la partida.
func (uc *UseCase) ForBatch(ctx context.Context, batchID string, format Format) (*Document, error) {
	renderer, err := uc.registry.Get(format)
	if err != nil {
		return nil, err
	}
	sheet, err := uc.sheet(ctx, batchID, "")
	if err != nil {
		return nil, err
	}
	return uc.render(ctx, renderer, sheet, "partida-"+batchID)
}

// ForBox etiqueta de una sola caja.
func (uc *UseCase) ForBox(ctx context.Context, boxID string, format Format) (*Document, error) {
	renderer, err := uc.registry.Get(format)
	if err != nil {
		return nil, err
	}
	box, err := uc.boxRepo.GetByID(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, fmt.Errorf("%w: caja %s", domain.ErrNotFound, boxID)
	}
	sheet, err := uc.sheet(ctx, box.BatchID, box.ID)
	if err != nil {
		return nil, err
	}
	return uc.render(ctx, renderer, sheet, "caja-"+boxID)
}

func (uc *UseCase) render(ctx context.Context, renderer Renderer, sheet Sheet, name string) (*Document, error) {
	data, err := renderer.Render(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", renderer.Format(), err)
	}
	uc.log.Debug().Str("batch_id", sheet.BatchID).Int("labels", len(sheet.Labels)).
		Str("format", string(renderer.Format())).Msg("etiquetas generadas")
	return &Document{
		Filename:    name + "." + string(renderer.Format()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// sheet arma la hoja de la partida; con onlyBox != "" deja solo esa caja (conservando su posición).
func (uc *UseCase) sheet(ctx context.Context, batchID, onlyBox string) (Sheet, error) {
	batch, err := uc.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return Sheet{}, err
	}
	if batch == nil {
		return Sheet{}, fmt.Errorf("%w: partida %s", domain.ErrNotFound, batchID)
	}
	boxes, err := uc.boxRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return Sheet{}, err
	}
	if len(boxes) == 0 {
		return Sheet{}, fmt.Errorf("%w: la partida no tiene cajas", domain.ErrInvalidInput)
	}

	var product *entity.Product
	if batch.ProductID != "" {
		if product, err = uc.productRepo.GetByID(ctx, batch.ProductID); err != nil {
			return Sheet{}, err
		}
	}
	zoneName := ""
	if zone, err := uc.zoneRepo.GetByID(ctx, batch.ZoneID); err != nil {
		return Sheet{}, err
	} else if zone != nil {
		zoneName = zone.Name
	}

	sheet := Sheet{BatchID: batch.ID, ReceivedAt: batch.ReceivedAt, Title: "Partida " + batch.ID}
	if product != nil {
		sheet.Title = product.Name
	}
	for i, box := range boxes {
		if onlyBox != "" && box.ID != onlyBox {
			continue
		}
		src := rules.LabelSource{BoxID: box.ID, BatchID: batch.ID, TotalBoxes: len(boxes)}
		if product != nil {
			src.ProductID = product.ID
			src.ProductName = product.Name
		}
		content, err := rules.BuildLabelContent(src)
		if err != nil {
			return Sheet{}, err
		}
		sheet.Labels = append(sheet.Labels, Label{
			BoxID:       box.ID,
			BatchID:     batch.ID,
			ProductID:   src.ProductID,
			ProductName: src.ProductName,
			ZoneName:    zoneName,
			Status:      box.Status,
			ScannedAt:   box.ScannedAt,
			Index:       i + 1,
			TotalBoxes:  len(boxes),
			Content:     content,
		})
	}
	return sheet, nil
}
