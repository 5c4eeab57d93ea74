package dto

// Límites de página para los listados de devoluciones.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación de /api/rmas.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize deja Limit en [1, MaxPageLimit] y Offset no negativo.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse página devuelta junto al total de solicitudes que cumplen el filtro.
// Total se serializa siempre: 0 significa que el filtro no encontró nada.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP; Code es estable (NOT_FOUND, VALIDATION, INVALID_TRANSITION...).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
