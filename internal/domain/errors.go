package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Errores de resolución de alcance. Todos bloquean la petición antes de consultar la DB.
var (
	ErrMissingTenant     = errors.New("el usuario no tiene empresa asignada")
	ErrMissingAgent      = errors.New("el usuario comercial no tiene identificador de agente")
	ErrFeatureNotEnabled = errors.New("módulo no contratado o fuera de vigencia")
)

// ErrAggregationInput petición de agregación mal formada (función o granularidad desconocida).
var ErrAggregationInput = errors.New("petición de agregación inválida")
