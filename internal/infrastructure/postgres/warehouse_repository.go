package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
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

const boxColumns = `id, batch_id, code, status, scanned_at, scanned_by, created_at, updated_at`

// BoxRepo implementación de BoxRepository (usable con pool o tx).
type BoxRepo struct {
	q Querier
}

// NewBoxRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBoxRepository(q Querier) *BoxRepo {
	return &BoxRepo{q: q}
}

// Create persiste una caja.
func (r *BoxRepo) Create(ctx context.Context, box *entity.Box) error {
	query := `
		INSERT INTO boxes (` + boxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		box.ID, box.BatchID, box.Code, string(box.Status), box.ScannedAt, box.ScannedBy, box.CreatedAt, box.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert box", err)
	}
	return nil
}

// CreateMany inserta las cajas con COPY.
func (r *BoxRepo) CreateMany(ctx context.Context, boxes []*entity.Box) error {
	if len(boxes) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(boxes))
	for _, b := range boxes {
		rows = append(rows, []any{b.ID, b.BatchID, b.Code, string(b.Status), b.ScannedAt, b.ScannedBy, b.CreatedAt, b.UpdatedAt})
	}
	_, err := r.q.CopyFrom(ctx,
		pgx.Identifier{"boxes"},
		[]string{"id", "batch_id", "code", "status", "scanned_at", "scanned_by", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return mapWriteError("copy boxes", err)
	}
	return nil
}

// GetByID obtiene una caja por ID.
func (r *BoxRepo) GetByID(ctx context.Context, id string) (*entity.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE id = $1`
	b, err := scanBox(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get box: %w", err)
	}
	return b, nil
}

// ListByBatch lista las cajas de la partida en orden de creación.
func (r *BoxRepo) ListByBatch(ctx context.Context, batchID string) ([]*entity.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE batch_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Box
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// CountByBatch cantidad de cajas de la partida.
func (r *BoxRepo) CountByBatch(ctx context.Context, batchID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM boxes WHERE batch_id = $1`, batchID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count boxes: %w", err)
	}
	return n, nil
}

// CountByStatus cantidad de cajas por estado; los estados sin cajas no aparecen.
func (r *BoxRepo) CountByStatus(ctx context.Context, batchID string) (map[entity.GoodsStatus]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM boxes WHERE batch_id = $1 GROUP BY status`, batchID)
	if err != nil {
		return nil, fmt.Errorf("count boxes by status: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.GoodsStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		out[entity.GoodsStatus(status)] = n
	}
	return out, rows.Err()
}

// Update actualiza código, estado y datos de escaneo.
func (r *BoxRepo) Update(ctx context.Context, box *entity.Box) error {
	query := `
		UPDATE boxes SET code = $2, status = $3, scanned_at = $4, scanned_by = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, box.ID, box.Code, string(box.Status), box.ScannedAt, box.ScannedBy, box.UpdatedAt)
	if err != nil {
		return mapWriteError("update box", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: caja %s", domain.ErrNotFound, box.ID)
	}
	return nil
}

// Delete elimina la caja y, en cascada, sus escaneos.
func (r *BoxRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM boxes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete box: %w", err)
	}
	return nil
}

func scanBox(row pgx.Row) (*entity.Box, error) {
	var b entity.Box
	var status string
	err := row.Scan(&b.ID, &b.BatchID, &b.Code, &status, &b.ScannedAt, &b.ScannedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = entity.GoodsStatus(status)
	return &b, nil
}

// ── Product batches ───────────────────────────────────────────────────────────

const batchColumns = `b.id, b.product_id, b.supplier_id, b.zone_id, b.status, b.received_at, b.created_at, b.updated_at`

// ProductBatchRepo implementación de ProductBatchRepository (usable con pool o tx).
type ProductBatchRepo struct {
	q Querier
}

// NewProductBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductBatchRepository(q Querier) *ProductBatchRepo {
	return &ProductBatchRepo{q: q}
}

// Create persiste una partida (sin cajas).
func (r *ProductBatchRepo) Create(ctx context.Context, batch *entity.ProductBatch) error {
	query := `
		INSERT INTO product_batches (id, product_id, supplier_id, zone_id, status, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, nullString(batch.ProductID), nullString(batch.SupplierID), batch.ZoneID, string(batch.Status),
		batch.ReceivedAt, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert product batch", err)
	}
	return nil
}

// GetByID obtiene una partida por ID.
func (r *ProductBatchRepo) GetByID(ctx context.Context, id string) (*entity.ProductBatch, error) {
	return r.get(ctx, `SELECT `+batchColumns+` FROM product_batches b WHERE b.id = $1`, id)
}

// GetForUpdate obtiene la partida bloqueando su fila hasta el fin de la transacción.
func (r *ProductBatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductBatch, error) {
	return r.get(ctx, `SELECT `+batchColumns+` FROM product_batches b WHERE b.id = $1 FOR UPDATE`, id)
}

func (r *ProductBatchRepo) get(ctx context.Context, query, id string) (*entity.ProductBatch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product batch: %w", err)
	}
	return b, nil
}

// Update actualiza referencias, zona, estado y fecha de recepción.
func (r *ProductBatchRepo) Update(ctx context.Context, batch *entity.ProductBatch) error {
	query := `
		UPDATE product_batches
		SET product_id = $2, supplier_id = $3, zone_id = $4, status = $5, received_at = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		batch.ID, nullString(batch.ProductID), nullString(batch.SupplierID), batch.ZoneID, string(batch.Status),
		batch.ReceivedAt, batch.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update product batch", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: partida %s", domain.ErrNotFound, batch.ID)
	}
	return nil
}

// Delete elimina la partida; las cajas y sus escaneos caen en cascada.
func (r *ProductBatchRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM product_batches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product batch: %w", err)
	}
	return nil
}

// List partidas filtradas, más recientes primero.
func (r *ProductBatchRepo) List(ctx context.Context, filter entity.BatchFilter, limit, offset int) ([]*entity.ProductBatch, error) {
	where, args := batchWhere(filter)
	pos := len(args) + 1
	query := `SELECT ` + batchColumns + ` FROM product_batches b JOIN zones z ON z.id = b.zone_id` + where +
		fmt.Sprintf(" ORDER BY b.received_at DESC, b.id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(ctx, query, args...)
}

// Count total de partidas que cumplen el filtro.
func (r *ProductBatchRepo) Count(ctx context.Context, filter entity.BatchFilter) (int, error) {
	where, args := batchWhere(filter)
	var n int
	query := `SELECT COUNT(*) FROM product_batches b JOIN zones z ON z.id = b.zone_id` + where
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count product batches: %w", err)
	}
	return n, nil
}

// ListWithMixedBoxStatuses partidas con al menos dos cajas en estados distintos.
func (r *ProductBatchRepo) ListWithMixedBoxStatuses(ctx context.Context) ([]*entity.ProductBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM product_batches b
		WHERE b.id IN (
			SELECT batch_id FROM boxes
			GROUP BY batch_id
			HAVING COUNT(*) > 1 AND COUNT(DISTINCT status) > 1
		)
		ORDER BY b.received_at DESC, b.id`
	return r.list(ctx, query)
}

func (r *ProductBatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProductBatch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list product batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// batchWhere arma el WHERE del filtro. La consulta debe unir zones como z.
func batchWhere(f entity.BatchFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("b.product_id = $%d", f.ProductID)
	}
	if f.SupplierID != "" {
		add("b.supplier_id = $%d", f.SupplierID)
	}
	if f.Status != "" {
		add("b.status = $%d", string(f.Status))
	}
	if f.ZoneName != "" {
		add("z.name = $%d", f.ZoneName)
	}
	if f.ReceivedFrom != nil {
		add("b.received_at >= $%d", *f.ReceivedFrom)
	}
	if f.ReceivedTo != nil {
		add("b.received_at <= $%d", *f.ReceivedTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanBatch(row pgx.Row) (*entity.ProductBatch, error) {
	var b entity.ProductBatch
	var productID, supplierID *string
	var status string
	err := row.Scan(&b.ID, &productID, &supplierID, &b.ZoneID, &status, &b.ReceivedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.ProductID = derefString(productID)
	b.SupplierID = derefString(supplierID)
	b.Status = entity.GoodsStatus(status)
	return &b, nil
}

// ── Zones ─────────────────────────────────────────────────────────────────────

// ZoneRepo implementación de ZoneRepository (usable con pool o tx).
type ZoneRepo struct {
	q Querier
}

// NewZoneRepository construye el adaptador. Pasar pool o tx (Querier).
func NewZoneRepository(q Querier) *ZoneRepo {
	return &ZoneRepo{q: q}
}

// Create persiste una zona; el nombre es único.
func (r *ZoneRepo) Create(ctx context.Context, zone *entity.Zone) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO zones (id, name, color, created_at) VALUES ($1, $2, $3, $4)`,
		zone.ID, zone.Name, zone.Color, zone.CreatedAt,
	)
	if err != nil {
		return mapWriteError("insert zone", err)
	}
	return nil
}

// GetByID obtiene una zona por ID.
func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*entity.Zone, error) {
	return r.get(ctx, `SELECT id, name, color, created_at FROM zones WHERE id = $1`, id)
}

// GetByName obtiene una zona por nombre.
func (r *ZoneRepo) GetByName(ctx context.Context, name string) (*entity.Zone, error) {
	return r.get(ctx, `SELECT id, name, color, created_at FROM zones WHERE name = $1`, name)
}

func (r *ZoneRepo) get(ctx context.Context, query, arg string) (*entity.Zone, error) {
	var z entity.Zone
	err := r.q.QueryRow(ctx, query, arg).Scan(&z.ID, &z.Name, &z.Color, &z.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get zone: %w", err)
	}
	return &z, nil
}

// List lista zonas con paginación.
func (r *ZoneRepo) List(ctx context.Context, limit, offset int) ([]*entity.Zone, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, color, created_at FROM zones ORDER BY created_at, name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()
	var list []*entity.Zone
	for rows.Next() {
		var z entity.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Color, &z.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		list = append(list, &z)
	}
	return list, rows.Err()
}

// Update cambia nombre y color.
func (r *ZoneRepo) Update(ctx context.Context, zone *entity.Zone) error {
	tag, err := r.q.Exec(ctx, `UPDATE zones SET name = $2, color = $3 WHERE id = $1`, zone.ID, zone.Name, zone.Color)
	if err != nil {
		return mapWriteError("update zone", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: zona %s", domain.ErrNotFound, zone.ID)
	}
	return nil
}

// Delete falla con ErrConflict si alguna partida ocupa la zona.
func (r *ZoneRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id); err != nil {
		return mapWriteError("delete zone", err)
	}
	return nil
}

// Stats cantidad de partidas por zona, incluidas las vacías.
func (r *ZoneRepo) Stats(ctx context.Context) ([]entity.ZoneStats, error) {
	query := `
		SELECT z.id, z.name, z.color, COUNT(b.id)
		FROM zones z LEFT JOIN product_batches b ON b.zone_id = z.id
		GROUP BY z.id, z.name, z.color, z.created_at
		ORDER BY z.created_at, z.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("zone stats: %w", err)
	}
	defer rows.Close()
	var out []entity.ZoneStats
	for rows.Next() {
		var s entity.ZoneStats
		if err := rows.Scan(&s.ZoneID, &s.Name, &s.Color, &s.BatchCount); err != nil {
			return nil, fmt.Errorf("scan zone stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ── Scan events ───────────────────────────────────────────────────────────────

// ScanEventRepo implementación de ScanEventRepository (usable con pool o tx).
type ScanEventRepo struct {
	q Querier
}

// NewScanEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewScanEventRepository(q Querier) *ScanEventRepo {
	return &ScanEventRepo{q: q}
}

// Create inserta un evento de escaneo.
func (r *ScanEventRepo) Create(ctx context.Context, event *entity.ScanEvent) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO scan_events (id, box_id, user_id, mode, scan_time) VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.BoxID, event.UserID, string(event.Mode), event.ScanTime,
	)
	if err != nil {
		return mapWriteError("insert scan event", err)
	}
	return nil
}

// ListByBox historial de escaneos de la caja, del más antiguo al más reciente.
func (r *ScanEventRepo) ListByBox(ctx context.Context, boxID string) ([]*entity.ScanEvent, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, box_id, user_id, mode, scan_time FROM scan_events WHERE box_id = $1 ORDER BY scan_time, id`,
		boxID,
	)
	if err != nil {
		return nil, fmt.Errorf("list scan events: %w", err)
	}
	defer rows.Close()
	var list []*entity.ScanEvent
	for rows.Next() {
		var e entity.ScanEvent
		var mode string
		if err := rows.Scan(&e.ID, &e.BoxID, &e.UserID, &mode, &e.ScanTime); err != nil {
			return nil, fmt.Errorf("scan scan event: %w", err)
		}
		e.Mode = entity.ScanMode(mode)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// mapWriteError traduce violaciones de constraint a errores de dominio.
func mapWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s: referencia inválida", domain.ErrConflict, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
