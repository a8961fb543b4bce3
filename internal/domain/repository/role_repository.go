package repository

import (
	"context"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// RoleRepository define el puerto de persistencia para Role (DIP).
// Las lecturas devuelven el rol con sus permisos cargados.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	Update(ctx context.Context, role *entity.Role) error
	Delete(ctx context.Context, id string) error
	// SetPermissions reemplaza el conjunto de permisos del rol.
	SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error
}

// PermissionRepository define el puerto de persistencia para Permission (DIP).
type PermissionRepository interface {
	Create(ctx context.Context, p *entity.Permission) error
	GetByID(ctx context.Context, id string) (*entity.Permission, error)
	List(ctx context.Context) ([]*entity.Permission, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Permission, error)
	Update(ctx context.Context, p *entity.Permission) error
	Delete(ctx context.Context, id string) error
}
