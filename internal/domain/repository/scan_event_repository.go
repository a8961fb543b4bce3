package repository

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// ScanEventRepository log de escaneos: solo inserción y lectura.
type ScanEventRepository interface {
	Create(ctx context.Context, event *entity.ScanEvent) error
	ListByBox(ctx context.Context, boxID string) ([]*entity.ScanEvent, error)
}
