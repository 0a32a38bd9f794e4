package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrParse                = errors.New("xml de NFe inválido")
	ErrMissingRequiredField = errors.New("campo obligatorio ausente")
	ErrInvalidConfig        = errors.New("configuración fiscal inválida")
)

// DocumentError describe un documento (o ítem) descartado durante la extracción.
// Envuelve ErrParse o ErrMissingRequiredField para que el caller use errors.Is.
type DocumentError struct {
	Path  string
	Item  int // número del ítem (det/@nItem); 0 si el error es del documento completo
	Field string
	Err   error
}

func (e *DocumentError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s (ítem %d): %v: %s", e.Path, e.Item, e.Err, e.Field)
	case e.Item > 0:
		return fmt.Sprintf("%s (ítem %d): %v", e.Path, e.Item, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *DocumentError) Unwrap() error { return e.Err }
