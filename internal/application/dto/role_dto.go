package dto

import (
	"time"

	"github.com/jhoicas/citrus-stock/internal/domain/entity"
)

// CreateRoleRequest entrada para crear un rol.
type CreateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description"`
}

// UpdateRoleRequest cambios de un rol.
type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SetPermissionsRequest reemplaza los permisos del rol.
type SetPermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

// RoleResponse salida de un rol con sus permisos.
type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CreatePermissionRequest entrada para crear un permiso "recurso:acción".
type CreatePermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// UpdatePermissionRequest cambios de un permiso.
type UpdatePermissionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// PermissionResponse salida de un permiso.
type PermissionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToRoleResponse mapea la entidad.
func ToRoleResponse(r *entity.Role) *RoleResponse {
	if r == nil {
		return nil
	}
	out := &RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: ToPermissionResponses(r.Permissions),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	return out
}

// ToPermissionResponse mapea la entidad.
func ToPermissionResponse(p *entity.Permission) PermissionResponse {
	return PermissionResponse{ID: p.ID, Name: p.Name, Description: p.Description, Category: p.Category, CreatedAt: p.CreatedAt}
}

// ToPermissionResponses mapea una lista.
func ToPermissionResponses(list []*entity.Permission) []PermissionResponse {
	out := make([]PermissionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ToPermissionResponse(p))
	}
	return out
}

// LookupItem valor de un catálogo cerrado con su etiqueta localizada.
type LookupItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// LookupResponse lista localizada.
type LookupResponse struct {
	Lang  string       `json:"lang"`
	Items []LookupItem `json:"items"`
}
