package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrLoginNameExists   = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrPlaintextPassword = errors.New("el password debe persistirse hasheado")
)

// Taxonomía de autenticación/autorización.
var (
	ErrMissingToken       = errors.New("token requerido")
	ErrInvalidCredentials = errors.New("token inválido o expirado")
	ErrUnauthenticated    = errors.New("no autenticado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrLoginFailed        = errors.New("Credenciales inválidas")
)
