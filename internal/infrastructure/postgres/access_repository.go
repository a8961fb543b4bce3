package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

var (
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.RoleRepository         = (*RoleRepo)(nil)
	_ repository.PermissionRepository   = (*PermissionRepo)(nil)
	_ repository.RefreshTokenRepository = (*RefreshTokenRepo)(nil)
)

// ── Users ─────────────────────────────────────────────────────────────────────

const userSelect = `
	SELECT u.id, u.username, u.email, u.password_hash, u.role_id, COALESCE(r.name, ''), u.status,
	       u.last_active_at, u.created_at, u.updated_at
	FROM users u LEFT JOIN roles r ON r.id = u.role_id`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.RoleID, u.Status, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return mapWriteError("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.get(ctx, userSelect+` WHERE u.id = $1`, id)
}

// GetByUsername obtiene un usuario por nombre de usuario.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.get(ctx, userSelect+` WHERE u.username = $1`, username)
}

func (r *UserRepo) get(ctx context.Context, query, arg string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET username = $2, email = $3, password_hash = $4, role_id = $5, status = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.RoleID, u.Status, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return mapWriteError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, u.ID)
	}
	return nil
}

// List lista usuarios con paginación.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, userSelect+` ORDER BY u.created_at, u.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Delete falla con ErrConflict si el usuario tiene escaneos registrados.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return mapWriteError("delete user", err)
	}
	return nil
}

// TouchLastActive registra la última actividad del usuario.
func (r *UserRepo) TouchLastActive(ctx context.Context, id string, at time.Time) error {
	if _, err := r.q.Exec(ctx, `UPDATE users SET last_active_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.Status,
		&u.LastActiveAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ── Roles ─────────────────────────────────────────────────────────────────────

// RoleRepo implementación de RoleRepository. Las lecturas cargan los permisos del rol.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador.
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// Create persiste un rol sin permisos.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `INSERT INTO roles (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt)
	if err != nil {
		return mapWriteError("insert role", err)
	}
	return nil
}

// GetByID obtiene un rol por ID.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.get(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id)
}

// GetByName obtiene un rol por nombre.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.get(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE name = $1`, name)
}

func (r *RoleRepo) get(ctx context.Context, query, arg string) (*entity.Role, error) {
	var role entity.Role
	err := r.q.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	perms, err := r.permissionsOf(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.Permissions = perms
	return &role, nil
}

// List devuelve todos los roles con sus permisos.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description, created_at, updated_at FROM roles ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	var list []*entity.Role
	for rows.Next() {
		var role entity.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, &role)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	// los permisos se cargan después de cerrar rows: una tx no admite dos consultas abiertas
	for _, role := range list {
		perms, err := r.permissionsOf(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
	}
	return list, nil
}

// Update actualiza nombre y descripción.
func (r *RoleRepo) Update(ctx context.Context, role *entity.Role) error {
	query := `UPDATE roles SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, role.ID, role.Name, role.Description, role.UpdatedAt)
	if err != nil {
		return mapWriteError("update role", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rol %s", domain.ErrNotFound, role.ID)
	}
	return nil
}

// Delete falla con ErrConflict si hay usuarios con el rol.
func (r *RoleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id); err != nil {
		return mapWriteError("delete role", err)
	}
	return nil
}

// SetPermissions deja al rol exactamente con permissionIDs.
func (r *RoleRepo) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists); err != nil {
		return fmt.Errorf("check role: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: rol %s", domain.ErrNotFound, roleID)
	}
	if permissionIDs == nil {
		permissionIDs = []string{}
	}
	_, err := r.q.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND NOT (permission_id::text = ANY($2::text[]))`,
		roleID, permissionIDs,
	)
	if err != nil {
		return fmt.Errorf("delete role permissions: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1, p::uuid FROM unnest($2::text[]) AS p
		ON CONFLICT DO NOTHING`,
		roleID, permissionIDs,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: permiso inexistente", domain.ErrNotFound)
		}
		return fmt.Errorf("insert role permissions: %w", err)
	}
	return nil
}

func (r *RoleRepo) permissionsOf(ctx context.Context, roleID string) ([]*entity.Permission, error) {
	query := `
		SELECT p.id, p.name, p.description, p.category, p.created_at
		FROM permissions p JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`
	return queryPermissions(ctx, r.q, query, roleID)
}

// ── Permissions ───────────────────────────────────────────────────────────────

// PermissionRepo implementación de PermissionRepository.
type PermissionRepo struct {
	q Querier
}

// NewPermissionRepository construye el adaptador.
func NewPermissionRepository(q Querier) *PermissionRepo {
	return &PermissionRepo{q: q}
}

// Create persiste un permiso; el nombre es único.
func (r *PermissionRepo) Create(ctx context.Context, p *entity.Permission) error {
	query := `INSERT INTO permissions (id, name, description, category, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Description, p.Category, p.CreatedAt); err != nil {
		return mapWriteError("insert permission", err)
	}
	return nil
}

// GetByID obtiene un permiso por ID.
func (r *PermissionRepo) GetByID(ctx context.Context, id string) (*entity.Permission, error) {
	var p entity.Permission
	err := r.q.QueryRow(ctx,
		`SELECT id, name, description, category, created_at FROM permissions WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}
	return &p, nil
}

// List todos los permisos agrupados por categoría.
func (r *PermissionRepo) List(ctx context.Context) ([]*entity.Permission, error) {
	return queryPermissions(ctx, r.q,
		`SELECT id, name, description, category, created_at FROM permissions ORDER BY category, name`)
}

// ListByIDs permisos con los IDs dados; los inexistentes se omiten.
func (r *PermissionRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return queryPermissions(ctx, r.q,
		`SELECT id, name, description, category, created_at FROM permissions WHERE id::text = ANY($1::text[]) ORDER BY name`,
		ids)
}

// Update actualiza nombre, descripción y categoría.
func (r *PermissionRepo) Update(ctx context.Context, p *entity.Permission) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE permissions SET name = $2, description = $3, category = $4 WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Category,
	)
	if err != nil {
		return mapWriteError("update permission", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: permiso %s", domain.ErrNotFound, p.ID)
	}
	return nil
}

// Delete elimina el permiso y sus asignaciones.
func (r *PermissionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete permission: %w", err)
	}
	return nil
}

func queryPermissions(ctx context.Context, q Querier, query string, args ...any) ([]*entity.Permission, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ── Refresh tokens ────────────────────────────────────────────────────────────

// RefreshTokenRepo implementación de RefreshTokenRepository.
type RefreshTokenRepo struct {
	q Querier
}

// NewRefreshTokenRepository construye el adaptador.
func NewRefreshTokenRepository(q Querier) *RefreshTokenRepo {
	return &RefreshTokenRepo{q: q}
}

// Create persiste un refresh token.
func (r *RefreshTokenRepo) Create(ctx context.Context, t *entity.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at, issued_at, revoked, device_info, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, t.ID, t.UserID, t.Token, t.ExpiresAt, t.IssuedAt, t.Revoked, t.DeviceInfo, t.IPAddress)
	if err != nil {
		return mapWriteError("insert refresh token", err)
	}
	return nil
}

// GetByToken busca por el valor opaco del token.
func (r *RefreshTokenRepo) GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, issued_at, revoked, device_info, ip_address
		FROM refresh_tokens WHERE token = $1`
	var t entity.RefreshToken
	err := r.q.QueryRow(ctx, query, token).Scan(
		&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.IssuedAt, &t.Revoked, &t.DeviceInfo, &t.IPAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

// Revoke marca el token como revocado.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `UPDATE refresh_tokens SET revoked = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser revoca todos los tokens vigentes del usuario.
func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.q.Exec(ctx, `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND NOT revoked`, userID)
	if err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpired borra los tokens vencidos y devuelve cuántos borró.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
