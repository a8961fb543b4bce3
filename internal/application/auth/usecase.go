package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
	"github.com/jhoicas/citrus-stock/pkg/jwt"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret       string
	ExpMinutes   int
	Issuer       string
	RefreshHours int
}

// ClientInfo origen de la sesión; se guarda junto al refresh token.
type ClientInfo struct {
	DeviceInfo string
	IPAddress  string
}

// AuthUseCase login, renovación y cierre de sesión.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	jwtCfg      JWTConfig
	log         *logger.Logger
	now         func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	refreshRepo repository.RefreshTokenRepository,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, refreshRepo: refreshRepo, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// Login verifica usuario/password y emite un par nuevo. Los refresh tokens previos del usuario se revocan.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest, client ClientInfo) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	if err := uc.refreshRepo.RevokeAllForUser(ctx, user.ID); err != nil {
		return nil, err
	}
	resp, err := uc.issue(ctx, user, client)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("login")
	return resp, nil
}

// Refresh canjea un refresh token vigente por un par nuevo; el usado queda revocado.
func (uc *AuthUseCase) Refresh(ctx context.Context, token string, client ClientInfo) (*dto.LoginResponse, error) {
	stored, err := uc.refreshRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, domain.ErrUnauthorized
	}
	now := uc.now()
	if stored.Revoked {
		// reuso de un token ya rotado: se cierra toda la sesión del usuario
		uc.log.Warn().Str("user_id", stored.UserID).Msg("reuso de refresh token revocado")
		if err := uc.refreshRepo.RevokeAllForUser(ctx, stored.UserID); err != nil {
			uc.log.Warn().Err(err).Str("user_id", stored.UserID).Msg("no se pudieron revocar las sesiones")
		}
		return nil, domain.ErrTokenRevoked
	}
	if stored.IsExpired(now) {
		return nil, domain.ErrTokenExpired
	}
	user, err := uc.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	if err := uc.refreshRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}
	return uc.issue(ctx, user, client)
}

// Logout revoca todos los refresh tokens del usuario.
func (uc *AuthUseCase) Logout(ctx context.Context, userID string) error {
	return uc.refreshRepo.RevokeAllForUser(ctx, userID)
}

// PurgeExpired borra los refresh tokens vencidos.
func (uc *AuthUseCase) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := uc.refreshRepo.DeleteExpired(ctx, uc.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int64("deleted", n).Msg("refresh tokens vencidos eliminados")
	}
	return n, nil
}

func (uc *AuthUseCase) issue(ctx context.Context, user *entity.User, client ClientInfo) (*dto.LoginResponse, error) {
	access, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.RoleName,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	refresh := &entity.RefreshToken{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Token:      uuid.New().String(),
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Duration(uc.jwtCfg.RefreshHours) * time.Hour),
		DeviceInfo: client.DeviceInfo,
		IPAddress:  client.IPAddress,
	}
	if err := uc.refreshRepo.Create(ctx, refresh); err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:        access,
		RefreshToken: refresh.Token,
		ExpiresAt:    now.Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:         *dto.ToUserResponse(user),
	}, nil
}

// SetClock reemplaza el reloj; solo para tests.
func (uc *AuthUseCase) SetClock(now func() time.Time) { uc.now = now }
