package entity

import "time"

// Estados válidos para User.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User operador o administrador del sistema.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	RoleID       string
	RoleName     string // se llena al leer (JOIN con roles)
	Status       string // active, inactive
	LastActiveAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede autenticarse.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
