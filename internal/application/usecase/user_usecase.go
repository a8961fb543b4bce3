package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

const minPasswordLen = 8

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	roleRepo repository.RoleRepository
	hashCost int
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roleRepo repository.RoleRepository) *UserUseCase {
	return &UserUseCase{repo: repo, roleRepo: roleRepo, hashCost: bcrypt.DefaultCost}
}

// SetHashCost cambia el costo de bcrypt; los tests usan bcrypt.MinCost.
func (uc *UserUseCase) SetHashCost(cost int) { uc.hashCost = cost }

// Create registra un usuario activo. El rol se indica por nombre.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: username muy corto", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password muy corto", domain.ErrInvalidInput)
	}
	role, err := uc.resolveRole(ctx, in.Role)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
		RoleID:       role.ID,
		RoleName:     role.Name,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(user), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToUserResponse(user), nil
}

// Update aplica los campos presentes. Un password nuevo se vuelve a hashear.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Email != nil {
		user.Email = strings.TrimSpace(*in.Email)
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: password muy corto", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), uc.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != nil {
		role, err := uc.resolveRole(ctx, *in.Role)
		if err != nil {
			return nil, err
		}
		user.RoleID = role.ID
		user.RoleName = role.Name
	}
	if in.Status != nil {
		switch *in.Status {
		case entity.UserStatusActive, entity.UserStatusInactive:
			user.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
		}
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.ToUserResponse(user), nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *dto.ToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un usuario. Con escaneos registrados devuelve ErrConflict.
func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// EnsureAdmin crea el usuario ADMIN o, si ya existe, le reasigna el rol y el password.
// Devuelve true si lo creó.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if password == "" {
		return false, fmt.Errorf("%w: ADMIN_PASSWORD vacío", domain.ErrMissingSeedConfig)
	}
	existing, err := uc.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := uc.Create(ctx, dto.CreateUserRequest{Username: username, Email: email, Password: password, Role: entity.RoleAdmin})
		return err == nil, err
	}
	role := entity.RoleAdmin
	status := entity.UserStatusActive
	in := dto.UpdateUserRequest{Password: &password, Role: &role, Status: &status}
	if email != "" {
		in.Email = &email
	}
	_, err = uc.Update(ctx, existing.ID, in)
	return false, err
}

// TouchLastActive registra actividad del usuario.
func (uc *UserUseCase) TouchLastActive(ctx context.Context, id string) error {
	return uc.repo.TouchLastActive(ctx, id, time.Now())
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrUserNotFound, id)
	}
	return user, nil
}

func (uc *UserUseCase) resolveRole(ctx context.Context, name string) (*entity.Role, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("%w: rol requerido", domain.ErrInvalidInput)
	}
	role, err := uc.roleRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: rol %s", domain.ErrInvalidInput, name)
	}
	return role, nil
}
