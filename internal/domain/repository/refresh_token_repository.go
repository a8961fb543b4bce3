package repository

import (
	"context"
	"time"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// RefreshTokenRepository define el puerto de persistencia para RefreshToken (DIP).
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	// DeleteExpired borra los tokens vencidos antes de now y devuelve cuántos borró.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
