package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrUsernameTaken      = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrTokenExpired       = errors.New("refresh token expirado")
	ErrTokenRevoked       = errors.New("refresh token revocado")

	// ErrMissingSeedConfig indica que falta una zona sembrada (RECEIVING, SHIPMENT...).
	// No es un error del usuario: se reporta como error interno.
	ErrMissingSeedConfig = errors.New("configuración base ausente")

	// ErrUnsupportedScanMode modo de escaneo fuera de la tabla de despacho.
	ErrUnsupportedScanMode = errors.New("modo de escaneo no soportado")

	// ErrInvalidLabelContent faltan datos para construir el contenido del código.
	ErrInvalidLabelContent = errors.New("contenido de etiqueta inválido")
)
