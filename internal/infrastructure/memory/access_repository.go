package memory

import (
	"context"
	"fmt"
	"time"

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

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

// NewUserRepository construye el repositorio.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.s.users[u.ID] = r.s.cloneUser(u)
	r.s.track(u.ID)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return r.s.cloneUser(u), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return r.s.cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return fmt.Errorf("%w: usuario %s", domain.ErrNotFound, u.ID)
	}
	for _, existing := range r.s.users {
		if existing.ID != u.ID && existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.s.users[u.ID] = r.s.cloneUser(u)
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.cloneUser(r.s.users[id]))
	}
	return page(out, limit, offset), nil
}

// Delete falla con ErrConflict si el usuario tiene escaneos registrados.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.UserID == id {
			return fmt.Errorf("%w: el usuario tiene escaneos registrados", domain.ErrConflict)
		}
	}
	delete(r.s.users, id)
	for tid, t := range r.s.tokens {
		if t.UserID == id {
			delete(r.s.tokens, tid)
		}
	}
	return nil
}

func (r *UserRepo) TouchLastActive(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil
	}
	c := r.s.cloneUser(u)
	c.LastActiveAt = &at
	r.s.users[id] = c
	return nil
}

// cloneUser copia el usuario resolviendo RoleName como lo haría el JOIN. Requiere s.mu tomado.
func (s *Store) cloneUser(u *entity.User) *entity.User {
	c := *u
	c.LastActiveAt = cloneTime(u.LastActiveAt)
	c.RoleName = ""
	if role, ok := s.roles[u.RoleID]; ok {
		c.RoleName = role.Name
	}
	return &c
}

// ── Roles & permissions ───────────────────────────────────────────────────────

// RoleRepo roles en memoria.
type RoleRepo struct{ s *Store }

// NewRoleRepository construye el repositorio.
func NewRoleRepository(s *Store) *RoleRepo { return &RoleRepo{s: s} }

func (r *RoleRepo) Create(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return domain.ErrDuplicate
		}
	}
	c := *role
	c.Permissions = nil
	r.s.roles[role.ID] = &c
	r.s.track(role.ID)
	return nil
}

func (r *RoleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, nil
	}
	return r.s.roleWithPermissions(role), nil
}

func (r *RoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			return r.s.roleWithPermissions(role), nil
		}
	}
	return nil, nil
}

func (r *RoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.roles))
	for id := range r.s.roles {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.Role, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.roleWithPermissions(r.s.roles[id]))
	}
	return out, nil
}

func (r *RoleRepo) Update(_ context.Context, role *entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[role.ID]; !ok {
		return fmt.Errorf("%w: rol %s", domain.ErrNotFound, role.ID)
	}
	c := *role
	c.Permissions = nil
	r.s.roles[role.ID] = &c
	return nil
}

// Delete falla con ErrConflict si hay usuarios con el rol.
func (r *RoleRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.RoleID == id {
			return fmt.Errorf("%w: el rol tiene usuarios", domain.ErrConflict)
		}
	}
	delete(r.s.roles, id)
	delete(r.s.rolePerms, id)
	return nil
}

func (r *RoleRepo) SetPermissions(_ context.Context, roleID string, permissionIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[roleID]; !ok {
		return fmt.Errorf("%w: rol %s", domain.ErrNotFound, roleID)
	}
	for _, pid := range permissionIDs {
		if _, ok := r.s.permissions[pid]; !ok {
			return fmt.Errorf("%w: permiso %s", domain.ErrNotFound, pid)
		}
	}
	r.s.rolePerms[roleID] = append([]string(nil), permissionIDs...)
	return nil
}

// roleWithPermissions copia el rol con sus permisos. Requiere s.mu tomado.
func (s *Store) roleWithPermissions(role *entity.Role) *entity.Role {
	c := *role
	c.Permissions = nil
	for _, pid := range s.rolePerms[role.ID] {
		if p, ok := s.permissions[pid]; ok {
			pc := *p
			c.Permissions = append(c.Permissions, &pc)
		}
	}
	return &c
}

// PermissionRepo permisos en memoria.
type PermissionRepo struct{ s *Store }

// NewPermissionRepository construye el repositorio.
func NewPermissionRepository(s *Store) *PermissionRepo { return &PermissionRepo{s: s} }

func (r *PermissionRepo) Create(_ context.Context, p *entity.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.permissions {
		if existing.Name == p.Name {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.s.permissions[p.ID] = &c
	r.s.track(p.ID)
	return nil
}

func (r *PermissionRepo) GetByID(_ context.Context, id string) (*entity.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.permissions[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *PermissionRepo) List(_ context.Context) ([]*entity.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.permissions))
	for id := range r.s.permissions {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.Permission, 0, len(ids))
	for _, id := range ids {
		c := *r.s.permissions[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *PermissionRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Permission, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Permission, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.permissions[id]; ok {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *PermissionRepo) Update(_ context.Context, p *entity.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.permissions[p.ID]; !ok {
		return fmt.Errorf("%w: permiso %s", domain.ErrNotFound, p.ID)
	}
	c := *p
	r.s.permissions[p.ID] = &c
	return nil
}

func (r *PermissionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.permissions, id)
	for roleID, pids := range r.s.rolePerms {
		kept := pids[:0:0]
		for _, pid := range pids {
			if pid != id {
				kept = append(kept, pid)
			}
		}
		r.s.rolePerms[roleID] = kept
	}
	return nil
}

// ── Refresh tokens ────────────────────────────────────────────────────────────

// RefreshTokenRepo refresh tokens en memoria.
type RefreshTokenRepo struct{ s *Store }

// NewRefreshTokenRepository construye el repositorio.
func NewRefreshTokenRepository(s *Store) *RefreshTokenRepo { return &RefreshTokenRepo{s: s} }

func (r *RefreshTokenRepo) Create(_ context.Context, t *entity.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *t
	r.s.tokens[t.ID] = &c
	return nil
}

func (r *RefreshTokenRepo) GetByToken(_ context.Context, token string) (*entity.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tokens {
		if t.Token == token {
			c := *t
			return &c, nil
		}
	}
	return nil, nil
}

func (r *RefreshTokenRepo) Revoke(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tokens[id]; ok {
		c := *t
		c.Revoked = true
		r.s.tokens[id] = &c
	}
	return nil
}

func (r *RefreshTokenRepo) RevokeAllForUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tokens {
		if t.UserID == userID && !t.Revoked {
			c := *t
			c.Revoked = true
			r.s.tokens[id] = &c
		}
	}
	return nil
}

func (r *RefreshTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.tokens {
		if t.IsExpired(now) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}
