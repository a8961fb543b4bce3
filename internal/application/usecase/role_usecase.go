package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// PolicyReloader recarga las políticas de autorización tras un cambio de roles o permisos.
type PolicyReloader interface {
	Reload(ctx context.Context) error
}

// RoleUseCase CRUD de roles y asignación de permisos.
type RoleUseCase struct {
	repo     repository.RoleRepository
	permRepo repository.PermissionRepository
	reloader PolicyReloader
	log      *logger.Logger
}

// NewRoleUseCase construye el caso de uso. reloader puede ser nil.
func NewRoleUseCase(repo repository.RoleRepository, permRepo repository.PermissionRepository, reloader PolicyReloader, log *logger.Logger) *RoleUseCase {
	return &RoleUseCase{repo: repo, permRepo: permRepo, reloader: reloader, log: log}
}

// Create crea un rol sin permisos. El nombre se normaliza a mayúsculas.
func (uc *RoleUseCase) Create(ctx context.Context, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	name := strings.ToUpper(strings.TrimSpace(in.Name))
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: nombre de rol muy corto", domain.ErrInvalidInput)
	}
	now := time.Now()
	role := &entity.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	uc.reload(ctx)
	return dto.ToRoleResponse(role), nil
}

func (uc *RoleUseCase) GetByID(ctx context.Context, id string) (*dto.RoleResponse, error) {
	role, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToRoleResponse(role), nil
}

func (uc *RoleUseCase) List(ctx context.Context) ([]*dto.RoleResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ToRoleResponse(r))
	}
	return out, nil
}

// Update cambia nombre o descripción. Los roles sembrados no se renombran.
func (uc *RoleUseCase) Update(ctx context.Context, id string, in dto.UpdateRoleRequest) (*dto.RoleResponse, error) {
	role, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.ToUpper(strings.TrimSpace(*in.Name))
		if len(name) < 2 {
			return nil, fmt.Errorf("%w: nombre de rol muy corto", domain.ErrInvalidInput)
		}
		if name != role.Name && isSeededRole(role.Name) {
			return nil, fmt.Errorf("%w: el rol %s no se puede renombrar", domain.ErrConflict, role.Name)
		}
		role.Name = name
	}
	if in.Description != nil {
		role.Description = *in.Description
	}
	role.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, role); err != nil {
		return nil, err
	}
	uc.reload(ctx)
	return uc.GetByID(ctx, id)
}

// Delete elimina un rol sin usuarios. Los roles sembrados no se eliminan.
func (uc *RoleUseCase) Delete(ctx context.Context, id string) error {
	role, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if isSeededRole(role.Name) {
		return fmt.Errorf("%w: el rol %s no se puede eliminar", domain.ErrConflict, role.Name)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.reload(ctx)
	return nil
}

// SetPermissions reemplaza los permisos del rol y recarga las políticas.
func (uc *RoleUseCase) SetPermissions(ctx context.Context, id string, in dto.SetPermissionsRequest) (*dto.RoleResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	ids := dedupe(in.PermissionIDs)
	found, err := uc.permRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, fmt.Errorf("%w: permisos inexistentes en la lista", domain.ErrNotFound)
	}
	if err := uc.repo.SetPermissions(ctx, id, ids); err != nil {
		return nil, err
	}
	uc.reload(ctx)
	return uc.GetByID(ctx, id)
}

func (uc *RoleUseCase) get(ctx context.Context, id string) (*entity.Role, error) {
	role, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol %s", domain.ErrNotFound, id)
	}
	return role, nil
}

// reload no falla la operación: la política vieja sigue vigente hasta el próximo cambio.
func (uc *RoleUseCase) reload(ctx context.Context) {
	reloadPolicies(ctx, uc.reloader, uc.log)
}

func reloadPolicies(ctx context.Context, r PolicyReloader, log *logger.Logger) {
	if r == nil {
		return
	}
	if err := r.Reload(ctx); err != nil {
		log.Error().Err(err).Msg("recargar políticas")
	}
}

func isSeededRole(name string) bool {
	_, ok := entity.DefaultRolePermissions[name]
	return ok
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
