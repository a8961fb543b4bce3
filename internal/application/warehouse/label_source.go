package warehouse

import (
	"context"
	"encoding/base64"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	rules "github.com/jhoicas/citrus-stock/internal/domain/warehouse"
)

// LabelResolver reúne la identidad de caja, partida y producto que va dentro del código.
type LabelResolver struct {
	batchRepo   repository.ProductBatchRepository
	boxRepo     repository.BoxRepository
	productRepo repository.ProductRepository
}

// NewLabelResolver construye el resolvedor.
func NewLabelResolver(
	batchRepo repository.ProductBatchRepository,
	boxRepo repository.BoxRepository,
	productRepo repository.ProductRepository,
) *LabelResolver {
	return &LabelResolver{batchRepo: batchRepo, boxRepo: boxRepo, productRepo: productRepo}
}

// Source arma el LabelSource de una caja. Partida o producto ausentes dejan el campo
// vacío; BuildLabelContent se encarga de reportarlo.
func (r *LabelResolver) Source(ctx context.Context, box *entity.Box) (rules.LabelSource, error) {
	src := rules.LabelSource{BoxID: box.ID}
	batch, err := r.batchRepo.GetByID(ctx, box.BatchID)
	if err != nil {
		return src, err
	}
	if batch == nil {
		return src, nil
	}
	src.BatchID = batch.ID
	total, err := r.boxRepo.CountByBatch(ctx, batch.ID)
	if err != nil {
		return src, err
	}
	src.TotalBoxes = total
	if batch.ProductID == "" {
		return src, nil
	}
	product, err := r.productRepo.GetByID(ctx, batch.ProductID)
	if err != nil {
		return src, err
	}
	if product != nil {
		src.ProductID = product.ID
		src.ProductName = product.Name
	}
	return src, nil
}

// Content contenido serializado para la caja.
func (r *LabelResolver) Content(ctx context.Context, box *entity.Box) (string, error) {
	src, err := r.Source(ctx, box)
	if err != nil {
		return "", err
	}
	return rules.BuildLabelContent(src)
}

// EncodeCode genera la imagen del código y la devuelve en base64, el formato guardado en Box.Code.
func EncodeCode(enc CodeEncoder, content string, size int) (string, error) {
	img, err := enc.Encode(content, size, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(img), nil
}
