package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
)

// PermissionChecker es el contrato mínimo que necesita el middleware. Lo implementa *authz.Enforcer.
type PermissionChecker interface {
	Enforce(role, resource, action string) (bool, error)
}

// RequirePermission verifica que el rol del token tenga resource:action.
// Debe usarse DESPUÉS de AuthMiddleware.
//
//   - 401 si el token no trae rol.
//   - 403 si el rol no tiene el permiso.
//   - 503 si no se pudo evaluar la política.
func RequirePermission(checker PermissionChecker, resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		ok, err := checker.Enforce(role, resource, action)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "AUTHZ_UNAVAILABLE",
				Message: "no se pudo verificar el permiso, intente más tarde",
			})
		}
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "falta el permiso " + resource + ":" + action,
			})
		}
		return c.Next()
	}
}
