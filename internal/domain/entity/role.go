package entity

import (
	"strings"
	"time"
)

// Roles sembrados por la migración inicial.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleOperator = "OPERATOR"
)

// Role agrupa permisos que se asignan a usuarios.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []*Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission permiso granular con nombre "recurso:acción" (ej. batches:write).
type Permission struct {
	ID          string
	Name        string
	Description string
	Category    string
	CreatedAt   time.Time
}

// ResourceAction separa el nombre en recurso y acción. Sin ":" la acción es "*".
func (p *Permission) ResourceAction() (resource, action string) {
	resource, action, found := strings.Cut(p.Name, ":")
	if !found || action == "" {
		return p.Name, "*"
	}
	return resource, action
}

// Acciones de permiso.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// DefaultPermissions permisos sembrados en una instalación nueva, agrupados por categoría.
var DefaultPermissions = []Permission{
	{Name: "batches:read", Category: "warehouse", Description: "Ver partidas"},
	{Name: "batches:write", Category: "warehouse", Description: "Crear y editar partidas"},
	{Name: "boxes:read", Category: "warehouse", Description: "Ver cajas"},
	{Name: "boxes:write", Category: "warehouse", Description: "Crear y editar cajas"},
	{Name: "scans:write", Category: "warehouse", Description: "Escanear cajas"},
	{Name: "labels:read", Category: "warehouse", Description: "Descargar etiquetas"},
	{Name: "zones:read", Category: "warehouse", Description: "Ver zonas"},
	{Name: "zones:write", Category: "warehouse", Description: "Editar zonas"},
	{Name: "products:read", Category: "catalog", Description: "Ver productos"},
	{Name: "products:write", Category: "catalog", Description: "Editar productos"},
	{Name: "suppliers:read", Category: "catalog", Description: "Ver proveedores"},
	{Name: "suppliers:write", Category: "catalog", Description: "Editar proveedores"},
	{Name: "users:read", Category: "access", Description: "Ver usuarios"},
	{Name: "users:write", Category: "access", Description: "Editar usuarios"},
	{Name: "roles:read", Category: "access", Description: "Ver roles y permisos"},
	{Name: "roles:write", Category: "access", Description: "Editar roles y permisos"},
}

// DefaultRolePermissions permisos de cada rol sembrado. ADMIN no necesita entradas: el
// enforcer le concede todo.
var DefaultRolePermissions = map[string][]string{
	RoleAdmin: nil,
	RoleManager: {
		"batches:read", "batches:write", "boxes:read", "boxes:write", "scans:write", "labels:read",
		"zones:read", "zones:write", "products:read", "products:write", "suppliers:read", "suppliers:write",
		"users:read", "roles:read",
	},
	RoleOperator: {
		"batches:read", "boxes:read", "scans:write", "labels:read", "zones:read", "products:read", "suppliers:read",
	},
}
