package entity

import "time"

// RefreshToken token opaco de larga duración que permite renovar el JWT de acceso.
type RefreshToken struct {
	ID         string
	UserID     string
	Token      string
	ExpiresAt  time.Time
	IssuedAt   time.Time
	Revoked    bool
	DeviceInfo string
	IPAddress  string
}

// IsExpired indica si el token venció respecto a now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsValid token no vencido y no revocado.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.IsExpired(now) && !t.Revoked
}
