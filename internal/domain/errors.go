package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrOverpayment       = errors.New("el pago excede el saldo pendiente")
	ErrContention        = errors.New("recurso bloqueado, reintente la operación")
	ErrUserNotFound      = errors.New("usuario no encontrado")
)

// Retryable indica si el caller puede reintentar la operación completa.
// Por contrato solo ErrContention es reintentable; el resto es terminal.
func Retryable(err error) bool {
	return errors.Is(err, ErrContention)
}
