package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

var (
	_ repository.BoxRepository          = (*BoxRepo)(nil)
	_ repository.ProductBatchRepository = (*ProductBatchRepo)(nil)
	_ repository.ZoneRepository         = (*ZoneRepo)(nil)
	_ repository.ScanEventRepository    = (*ScanEventRepo)(nil)
)

// ── Boxes ─────────────────────────────────────────────────────────────────────

// BoxRepo cajas en memoria.
type BoxRepo struct {
	s  *Store
	tx *txLog
}

// NewBoxRepository construye el repositorio.
func NewBoxRepository(s *Store) *BoxRepo { return &BoxRepo{s: s} }

func (r *BoxRepo) Create(ctx context.Context, box *entity.Box) error {
	return r.CreateMany(ctx, []*entity.Box{box})
}

func (r *BoxRepo) CreateMany(_ context.Context, boxes []*entity.Box) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range boxes {
		if _, ok := r.s.batches[b.BatchID]; !ok {
			return fmt.Errorf("%w: partida %s no existe", domain.ErrConflict, b.BatchID)
		}
		if _, ok := r.s.boxes[b.ID]; ok {
			return domain.ErrDuplicate
		}
	}
	for _, b := range boxes {
		put(r.s, r.tx, r.s.boxes, b.ID, cloneBox(b))
	}
	return nil
}

func (r *BoxRepo) GetByID(_ context.Context, id string) (*entity.Box, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.boxes[id]
	if !ok {
		return nil, nil
	}
	return cloneBox(b), nil
}

func (r *BoxRepo) ListByBatch(_ context.Context, batchID string) ([]*entity.Box, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.boxesOf(batchID), nil
}

func (r *BoxRepo) CountByBatch(_ context.Context, batchID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.boxesOf(batchID)), nil
}

func (r *BoxRepo) CountByStatus(_ context.Context, batchID string) (map[entity.GoodsStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[entity.GoodsStatus]int)
	for _, b := range r.s.boxesOf(batchID) {
		out[b.Status]++
	}
	return out, nil
}

func (r *BoxRepo) Update(_ context.Context, box *entity.Box) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boxes[box.ID]; !ok {
		return fmt.Errorf("%w: caja %s", domain.ErrNotFound, box.ID)
	}
	put(r.s, r.tx, r.s.boxes, box.ID, cloneBox(box))
	return nil
}

func (r *BoxRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boxes[id]; ok {
		put[entity.Box](r.s, r.tx, r.s.boxes, id, nil)
	}
	r.s.dropEvents(r.tx, map[string]bool{id: true})
	return nil
}

// dropEvents borra los eventos de las cajas dadas (ON DELETE CASCADE). Requiere s.mu tomado.
func (s *Store) dropEvents(l *txLog, boxIDs map[string]bool) {
	kept := s.events[:0:0]
	var dropped []*entity.ScanEvent
	for _, e := range s.events {
		if boxIDs[e.BoxID] {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	if len(dropped) == 0 {
		return
	}
	l.add(func() {
		s.events = append(s.events, dropped...)
		sort.SliceStable(s.events, func(i, j int) bool { return s.events[i].ScanTime.Before(s.events[j].ScanTime) })
	})
}

// boxesOf cajas de una partida en orden de creación. Requiere s.mu tomado.
func (s *Store) boxesOf(batchID string) []*entity.Box {
	var ids []string
	for id, b := range s.boxes {
		if b.BatchID == batchID {
			ids = append(ids, id)
		}
	}
	s.sortByInsertion(ids)
	out := make([]*entity.Box, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneBox(s.boxes[id]))
	}
	return out
}

// ── Batches ───────────────────────────────────────────────────────────────────

// ProductBatchRepo partidas en memoria.
type ProductBatchRepo struct {
	s  *Store
	tx *txLog
}

// NewProductBatchRepository construye el repositorio.
func NewProductBatchRepository(s *Store) *ProductBatchRepo { return &ProductBatchRepo{s: s} }

func (r *ProductBatchRepo) Create(_ context.Context, batch *entity.ProductBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.batches[batch.ID]; ok {
		return domain.ErrDuplicate
	}
	put(r.s, r.tx, r.s.batches, batch.ID, cloneBatch(batch))
	return nil
}

func (r *ProductBatchRepo) GetByID(_ context.Context, id string) (*entity.ProductBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	return cloneBatch(b), nil
}

// GetForUpdate en memoria el aislamiento lo da Store.Run.
func (r *ProductBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductBatch, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductBatchRepo) Update(_ context.Context, batch *entity.ProductBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.batches[batch.ID]; !ok {
		return fmt.Errorf("%w: partida %s", domain.ErrNotFound, batch.ID)
	}
	put(r.s, r.tx, r.s.batches, batch.ID, cloneBatch(batch))
	return nil
}

func (r *ProductBatchRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.batches[id]; ok {
		put[entity.ProductBatch](r.s, r.tx, r.s.batches, id, nil)
	}
	removed := make(map[string]bool)
	for boxID, b := range r.s.boxes {
		if b.BatchID == id {
			removed[boxID] = true
		}
	}
	for boxID := range removed {
		put[entity.Box](r.s, r.tx, r.s.boxes, boxID, nil)
	}
	r.s.dropEvents(r.tx, removed)
	return nil
}

func (r *ProductBatchRepo) List(_ context.Context, filter entity.BatchFilter, limit, offset int) ([]*entity.ProductBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.s.filterBatches(filter), limit, offset), nil
}

func (r *ProductBatchRepo) Count(_ context.Context, filter entity.BatchFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.filterBatches(filter)), nil
}

func (r *ProductBatchRepo) ListWithMixedBoxStatuses(_ context.Context) ([]*entity.ProductBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ProductBatch
	for _, id := range r.s.batchIDs() {
		boxes := r.s.boxesOf(id)
		if len(boxes) < 2 {
			continue
		}
		for _, b := range boxes[1:] {
			if b.Status != boxes[0].Status {
				out = append(out, cloneBatch(r.s.batches[id]))
				break
			}
		}
	}
	return out, nil
}

// batchIDs ids de partidas en orden de inserción. Requiere s.mu tomado.
func (s *Store) batchIDs() []string {
	ids := make([]string, 0, len(s.batches))
	for id := range s.batches {
		ids = append(ids, id)
	}
	s.sortByInsertion(ids)
	return ids
}

// filterBatches aplica BatchFilter. Requiere s.mu tomado.
func (s *Store) filterBatches(f entity.BatchFilter) []*entity.ProductBatch {
	zoneID := ""
	if f.ZoneName != "" {
		for _, z := range s.zones {
			if z.Name == f.ZoneName {
				zoneID = z.ID
			}
		}
		if zoneID == "" {
			return nil
		}
	}
	var out []*entity.ProductBatch
	for _, id := range s.batchIDs() {
		b := s.batches[id]
		switch {
		case f.ProductID != "" && b.ProductID != f.ProductID,
			f.SupplierID != "" && b.SupplierID != f.SupplierID,
			f.Status != "" && b.Status != f.Status,
			zoneID != "" && b.ZoneID != zoneID,
			f.ReceivedFrom != nil && b.ReceivedAt.Before(*f.ReceivedFrom),
			f.ReceivedTo != nil && b.ReceivedAt.After(*f.ReceivedTo):
			continue
		}
		out = append(out, cloneBatch(b))
	}
	// mismo orden que el listado SQL: más recientes primero
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.After(out[j].ReceivedAt) })
	return out
}

// ── Zones ─────────────────────────────────────────────────────────────────────

// ZoneRepo zonas en memoria.
type ZoneRepo struct {
	s  *Store
	tx *txLog
}

// NewZoneRepository construye el repositorio.
func NewZoneRepository(s *Store) *ZoneRepo { return &ZoneRepo{s: s} }

func (r *ZoneRepo) Create(_ context.Context, zone *entity.Zone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, z := range r.s.zones {
		if z.Name == zone.Name {
			return domain.ErrDuplicate
		}
	}
	c := *zone
	put(r.s, r.tx, r.s.zones, zone.ID, &c)
	return nil
}

func (r *ZoneRepo) GetByID(_ context.Context, id string) (*entity.Zone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	z, ok := r.s.zones[id]
	if !ok {
		return nil, nil
	}
	c := *z
	return &c, nil
}

func (r *ZoneRepo) GetByName(_ context.Context, name string) (*entity.Zone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, z := range r.s.zones {
		if z.Name == name {
			c := *z
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ZoneRepo) List(_ context.Context, limit, offset int) ([]*entity.Zone, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.s.zoneList(), limit, offset), nil
}

func (r *ZoneRepo) Update(_ context.Context, zone *entity.Zone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.zones[zone.ID]; !ok {
		return fmt.Errorf("%w: zona %s", domain.ErrNotFound, zone.ID)
	}
	c := *zone
	put(r.s, r.tx, r.s.zones, zone.ID, &c)
	return nil
}

// Delete falla con ErrConflict si alguna partida ocupa la zona (igual que la FK en PostgreSQL).
func (r *ZoneRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.batches {
		if b.ZoneID == id {
			return fmt.Errorf("%w: la zona tiene partidas", domain.ErrConflict)
		}
	}
	if _, ok := r.s.zones[id]; ok {
		put[entity.Zone](r.s, r.tx, r.s.zones, id, nil)
	}
	return nil
}

func (r *ZoneRepo) Stats(_ context.Context) ([]entity.ZoneStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[string]int)
	for _, b := range r.s.batches {
		counts[b.ZoneID]++
	}
	zones := r.s.zoneList()
	out := make([]entity.ZoneStats, 0, len(zones))
	for _, z := range zones {
		out = append(out, entity.ZoneStats{ZoneID: z.ID, Name: z.Name, Color: z.Color, BatchCount: counts[z.ID]})
	}
	return out, nil
}

// zoneList zonas en orden de inserción. Requiere s.mu tomado.
func (s *Store) zoneList() []*entity.Zone {
	ids := make([]string, 0, len(s.zones))
	for id := range s.zones {
		ids = append(ids, id)
	}
	s.sortByInsertion(ids)
	out := make([]*entity.Zone, 0, len(ids))
	for _, id := range ids {
		c := *s.zones[id]
		out = append(out, &c)
	}
	return out
}

// ── Scan events ───────────────────────────────────────────────────────────────

// ScanEventRepo log de escaneos en memoria (solo inserción).
type ScanEventRepo struct {
	s  *Store
	tx *txLog
}

// NewScanEventRepository construye el repositorio.
func NewScanEventRepository(s *Store) *ScanEventRepo { return &ScanEventRepo{s: s} }

func (r *ScanEventRepo) Create(_ context.Context, event *entity.ScanEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boxes[event.BoxID]; !ok {
		return fmt.Errorf("%w: caja %s no existe", domain.ErrConflict, event.BoxID)
	}
	c := *event
	r.s.appendEvent(r.tx, &c)
	return nil
}

func (r *ScanEventRepo) ListByBox(_ context.Context, boxID string) ([]*entity.ScanEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ScanEvent
	for _, e := range r.s.events {
		if e.BoxID == boxID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

// Len total de eventos registrados.
func (r *ScanEventRepo) Len() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.events)
}
