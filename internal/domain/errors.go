package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidTransition   = errors.New("transición de estado no permitida")
	ErrGenerationExhausted = errors.New("no se pudo generar un código de referencia único")
	ErrStorage             = errors.New("error de almacenamiento")
	ErrDuplicateReference  = errors.New("código de referencia ya usado")
	ErrUnauthorized        = errors.New("no autorizado")
)
