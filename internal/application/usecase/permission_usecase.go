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

// PermissionUseCase CRUD de permisos "recurso:acción".
type PermissionUseCase struct {
	repo     repository.PermissionRepository
	reloader PolicyReloader
	log      *logger.Logger
}

// NewPermissionUseCase construye el caso de uso. reloader puede ser nil.
func NewPermissionUseCase(repo repository.PermissionRepository, reloader PolicyReloader, log *logger.Logger) *PermissionUseCase {
	return &PermissionUseCase{repo: repo, reloader: reloader, log: log}
}

func (uc *PermissionUseCase) Create(ctx context.Context, in dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	name, err := normalizePermission(in.Name)
	if err != nil {
		return nil, err
	}
	p := &entity.Permission{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Category:    in.Category,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := dto.ToPermissionResponse(p)
	return &out, nil
}

func (uc *PermissionUseCase) GetByID(ctx context.Context, id string) (*dto.PermissionResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToPermissionResponse(p)
	return &out, nil
}

func (uc *PermissionUseCase) List(ctx context.Context) ([]dto.PermissionResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToPermissionResponses(list), nil
}

// Update renombra o recategoriza. Un cambio de nombre afecta a las políticas vigentes.
func (uc *PermissionUseCase) Update(ctx context.Context, id string, in dto.UpdatePermissionRequest) (*dto.PermissionResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	renamed := false
	if in.Name != nil {
		name, err := normalizePermission(*in.Name)
		if err != nil {
			return nil, err
		}
		renamed = name != p.Name
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if renamed {
		reloadPolicies(ctx, uc.reloader, uc.log)
	}
	out := dto.ToPermissionResponse(p)
	return &out, nil
}

// Delete elimina el permiso y lo quita de todos los roles.
func (uc *PermissionUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	reloadPolicies(ctx, uc.reloader, uc.log)
	return nil
}

func (uc *PermissionUseCase) get(ctx context.Context, id string) (*entity.Permission, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: permiso %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// normalizePermission exige "recurso:acción" en minúsculas.
func normalizePermission(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	resource, action, ok := strings.Cut(name, ":")
	if !ok || resource == "" || action == "" || strings.Contains(action, ":") {
		return "", fmt.Errorf("%w: permiso %q debe ser recurso:acción", domain.ErrInvalidInput, name)
	}
	return name, nil
}
