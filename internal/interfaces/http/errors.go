package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/citrus-stock/internal/application/dto"
	"github.com/jhoicas/citrus-stock/internal/domain"
)

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnsupportedScanMode, fiber.StatusBadRequest, "UNSUPPORTED_SCAN_MODE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidLabelContent, fiber.StatusUnprocessableEntity, "INVALID_LABEL_CONTENT"},
	{domain.ErrUsernameTaken, fiber.StatusConflict, "USERNAME_TAKEN"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrTokenExpired, fiber.StatusUnauthorized, "TOKEN_EXPIRED"},
	{domain.ErrTokenRevoked, fiber.StatusUnauthorized, "TOKEN_REVOKED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrMissingSeedConfig, fiber.StatusInternalServerError, "MISSING_SEED_CONFIG"},
}

// writeError traduce un error de dominio a status y código. Lo no reconocido es INTERNAL.
func writeError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func validation(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}

// pathID lee :id; vacío responde MISSING_ID.
func pathID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if id == "" {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
		return "", false
	}
	return id, true
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultLimit), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
