package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retryable true solo para contención de locks: el caller debe reintentar
	// la operación lógica completa, no solo el lock.
	Retryable bool `json:"retryable,omitempty"`
}

// PageRequest paginación para listados por cursor.
type PageRequest struct {
	Limit int `query:"limit"`
}

// DefaultPage aplica el límite por defecto.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
}
