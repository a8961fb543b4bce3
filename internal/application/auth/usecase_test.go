package auth_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/citrus-stock/internal/application/auth"
	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/infrastructure/memory"
	"github.com/jhoicas/citrus-stock/pkg/jwt"
	"github.com/jhoicas/citrus-stock/pkg/logger"
)

const secret = "test-secret"

type fixture struct {
	uc     *auth.AuthUseCase
	users  *memory.UserRepo
	tokens *memory.RefreshTokenRepo
	user   *entity.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.Seed(ctx)

	role, err := memory.NewRoleRepository(store).GetByName(ctx, entity.RoleOperator)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := memory.NewUserRepository(store)
	user := &entity.User{
		ID: "u-1", Username: "ana", PasswordHash: string(hash), RoleID: role.ID,
		Status: entity.UserStatusActive, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, users.Create(ctx, user))

	tokens := memory.NewRefreshTokenRepository(store)
	uc := auth.NewAuthUseCase(users, tokens, auth.JWTConfig{
		Secret: secret, ExpMinutes: 15, Issuer: "test", RefreshHours: 24,
	}, logger.Nop())
	return fixture{uc: uc, users: users, tokens: tokens, user: user}
}

func login(t *testing.T, f fixture) *dto.LoginResponse {
	t.Helper()
	resp, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "secreto123"}, auth.ClientInfo{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	return resp
}

// ── Login ─────────────────────────────────────────────────────────────────────

func TestLogin_EmiteParDeTokens(t *testing.T) {
	f := setup(t)
	resp := login(t, f)

	id, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, entity.RoleOperator, id.Role)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, entity.RoleOperator, resp.User.Role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	f := setup(t)
	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "otra"}, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	f := setup(t)
	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "x"}, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	f := setup(t)
	f.user.Status = entity.UserStatusInactive
	require.NoError(t, f.users.Update(context.Background(), f.user))

	_, err := f.uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "secreto123"}, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestLogin_RevocaSesionesPrevias(t *testing.T) {
	f := setup(t)
	first := login(t, f)
	login(t, f)

	stored, err := f.tokens.GetByToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
}

// ── Refresh ───────────────────────────────────────────────────────────────────

func TestRefresh_RotaElToken(t *testing.T) {
	f := setup(t)
	first := login(t, f)

	second, err := f.uc.Refresh(context.Background(), first.RefreshToken, auth.ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.uc.Refresh(context.Background(), first.RefreshToken, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestRefresh_ReusoRevocaTodo(t *testing.T) {
	f := setup(t)
	first := login(t, f)
	second, err := f.uc.Refresh(context.Background(), first.RefreshToken, auth.ClientInfo{})
	require.NoError(t, err)

	_, err = f.uc.Refresh(context.Background(), first.RefreshToken, auth.ClientInfo{})
	require.ErrorIs(t, err, domain.ErrTokenRevoked)

	_, err = f.uc.Refresh(context.Background(), second.RefreshToken, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestRefresh_TokenVencido(t *testing.T) {
	f := setup(t)
	resp := login(t, f)
	f.uc.SetClock(func() time.Time { return time.Now().Add(25 * time.Hour) })

	_, err := f.uc.Refresh(context.Background(), resp.RefreshToken, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestRefresh_TokenDesconocido(t *testing.T) {
	f := setup(t)
	_, err := f.uc.Refresh(context.Background(), "no-existe", auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// revokeFailingRepo falla RevokeAllForUser cuando failRevokeAll está activo.
type revokeFailingRepo struct {
	*memory.RefreshTokenRepo
	failRevokeAll bool
}

func (r *revokeFailingRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	if r.failRevokeAll {
		return errors.New("base no disponible")
	}
	return r.RefreshTokenRepo.RevokeAllForUser(ctx, userID)
}

func TestRefresh_ReusoConFalloDeRevocacionQuedaEnLog(t *testing.T) {
	f := setup(t)
	repo := &revokeFailingRepo{RefreshTokenRepo: f.tokens}
	var buf bytes.Buffer
	uc := auth.NewAuthUseCase(f.users, repo, auth.JWTConfig{
		Secret: secret, ExpMinutes: 15, Issuer: "test", RefreshHours: 24,
	}, logger.FromWriter(&buf))

	first, err := uc.Login(context.Background(), dto.LoginRequest{Username: "ana", Password: "secreto123"}, auth.ClientInfo{})
	require.NoError(t, err)
	_, err = uc.Refresh(context.Background(), first.RefreshToken, auth.ClientInfo{})
	require.NoError(t, err)

	repo.failRevokeAll = true
	_, err = uc.Refresh(context.Background(), first.RefreshToken, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	assert.Contains(t, buf.String(), "base no disponible")
	assert.Contains(t, buf.String(), "no se pudieron revocar las sesiones")
}

// ── Logout / purge ────────────────────────────────────────────────────────────

func TestLogout_InvalidaRefresh(t *testing.T) {
	f := setup(t)
	resp := login(t, f)
	require.NoError(t, f.uc.Logout(context.Background(), "u-1"))

	_, err := f.uc.Refresh(context.Background(), resp.RefreshToken, auth.ClientInfo{})
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestPurgeExpired_BorraSoloVencidos(t *testing.T) {
	f := setup(t)
	login(t, f)

	n, err := f.uc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	f.uc.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })
	n, err = f.uc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
