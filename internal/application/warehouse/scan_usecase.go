package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	rules "github.com/jhoicas/citrus-stock/internal/domain/warehouse"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// SideEffect resultado de un sub-paso no fatal. Su error se registra en el log y
// no detiene la operación principal.
type SideEffect struct {
	Step    string
	Skipped bool
	Err     error
}

// Failed indica si el sub-paso falló.
func (s SideEffect) Failed() bool { return s.Err != nil }

// ScanResult resultado de un escaneo.
type ScanResult struct {
	Box           *entity.Box
	Event         *entity.ScanEvent
	BatchStatus   entity.GoodsStatus
	BatchPromoted bool
	CodeStep      SideEffect
}

// ScanUseCase orquesta el escaneo de una caja: transición de la caja, código perezoso,
// evento de auditoría y reconciliación de la partida.
type ScanUseCase struct {
	tx       TxRunner
	boxRepo  repository.BoxRepository
	userRepo repository.UserRepository
	labels   *LabelResolver
	encoder  CodeEncoder
	codeSize int
	metrics  Metrics
	log      *logger.Logger
}

// NewScanUseCase construye el orquestador. codeSize es el lado en píxeles del código generado.
func NewScanUseCase(
	tx TxRunner,
	boxRepo repository.BoxRepository,
	userRepo repository.UserRepository,
	labels *LabelResolver,
	encoder CodeEncoder,
	codeSize int,
	metrics Metrics,
	log *logger.Logger,
) *ScanUseCase {
	return &ScanUseCase{
		tx:       tx,
		boxRepo:  boxRepo,
		userRepo: userRepo,
		labels:   labels,
		encoder:  encoder,
		codeSize: codeSize,
		metrics:  metrics,
		log:      log,
	}
}

// ScanBox registra el escaneo de boxID por operatorID con el modo dado.
//
// Caja u operador inexistentes abortan sin escribir nada. Si la caja no tiene código
// se genera (un fallo aquí solo se registra). La transición de la caja, el evento y la
// reconciliación de la partida se confirman juntos o no se confirman.
func (uc *ScanUseCase) ScanBox(ctx context.Context, boxID, operatorID string, mode entity.ScanMode) (*ScanResult, error) {
	policy, err := rules.PolicyFor(mode)
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
	operator, err := uc.userRepo.GetByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, fmt.Errorf("%w: operador %s", domain.ErrNotFound, operatorID)
	}

	res := &ScanResult{Box: box}
	res.CodeStep = uc.ensureCode(ctx, box)
	if res.CodeStep.Failed() {
		uc.metrics.CodeGenerationFailed()
		uc.log.Warn().Err(res.CodeStep.Err).Str("box_id", box.ID).Msg("no se pudo generar el código; el escaneo continúa")
	}

	now := time.Now()
	err = uc.tx.Run(ctx, func(tx TxRepos) error {
		box.MarkScanned(policy.BoxStatus, operator.ID, now)
		if err := tx.Boxes.Update(ctx, box); err != nil {
			return err
		}

		zone, err := resolveSeedZone(ctx, tx.Zones, policy.TargetZone)
		if err != nil {
			return err
		}

		event := &entity.ScanEvent{
			ID:       uuid.New().String(),
			BoxID:    box.ID,
			UserID:   operator.ID,
			Mode:     policy.Mode,
			ScanTime: now,
		}
		if err := tx.ScanEvents.Create(ctx, event); err != nil {
			return err
		}
		res.Event = event

		outcome, err := reconcile(ctx, tx, box.BatchID, zone)
		if err != nil {
			return err
		}
		res.BatchStatus = outcome.Status
		res.BatchPromoted = outcome.Promoted
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ScanRecorded(policy.Mode)
	if res.BatchPromoted {
		uc.metrics.BatchPromoted(res.BatchStatus)
	}
	uc.log.Info().
		Str("box_id", box.ID).
		Str("batch_id", box.BatchID).
		Str("operator_id", operator.ID).
		Str("mode", string(policy.Mode)).
		Bool("batch_promoted", res.BatchPromoted).
		Msg("caja escaneada")
	return res, nil
}

// ensureCode llena Box.Code si está vacío; nunca regenera un código existente.
func (uc *ScanUseCase) ensureCode(ctx context.Context, box *entity.Box) SideEffect {
	step := SideEffect{Step: "code"}
	if box.HasCode() {
		step.Skipped = true
		return step
	}
	content, err := uc.labels.Content(ctx, box)
	if err != nil {
		step.Err = err
		return step
	}
	code, err := EncodeCode(uc.encoder, content, uc.codeSize)
	if err != nil {
		step.Err = fmt.Errorf("codificar: %w", err)
		return step
	}
	box.Code = code
	return step
}
