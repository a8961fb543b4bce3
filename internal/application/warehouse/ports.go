package warehouse

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Boxes      repository.BoxRepository
	Batches    repository.ProductBatchRepository
	Zones      repository.ZoneRepository
	ScanEvents repository.ScanEventRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error, nada de lo escrito se confirma.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx TxRepos) error) error
}

// CodeEncoder convierte un contenido en la imagen de un código escaneable.
type CodeEncoder interface {
	Encode(content string, width, height int) ([]byte, error)
}

// Metrics contadores de negocio del flujo de bodega.
type Metrics interface {
	ScanRecorded(mode entity.ScanMode)
	BatchPromoted(status entity.GoodsStatus)
	CodeGenerationFailed()
	BatchCreated(boxes int)
}
