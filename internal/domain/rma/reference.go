package rma

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jhoicas/rma-api/internal/domain"
)

// DefaultMaxAttempts intentos por defecto antes de ErrGenerationExhausted.
const DefaultMaxAttempts = 10

// ReferenceChecker consulta si un código de referencia ya está en uso.
type ReferenceChecker interface {
	ExistsByReference(ctx context.Context, code string) (bool, error)
}

// ReferenceGenerator produce códigos PREFIJO-AAAAMMDD-NNNN verificando colisiones.
type ReferenceGenerator struct {
	maxAttempts int
	now         func() time.Time
	randN       func(n int) int
}

// NewReferenceGenerator construye el generador. maxAttempts <= 0 usa DefaultMaxAttempts.
func NewReferenceGenerator(maxAttempts int) *ReferenceGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &ReferenceGenerator{
		maxAttempts: maxAttempts,
		now:         time.Now,
		randN:       rand.IntN,
	}
}

// WithClock reemplaza el reloj (tests).
func (g *ReferenceGenerator) WithClock(now func() time.Time) *ReferenceGenerator {
	g.now = now
	return g
}

// WithRandom reemplaza la fuente aleatoria (tests). randN(n) debe devolver un valor en [0, n).
func (g *ReferenceGenerator) WithRandom(randN func(n int) int) *ReferenceGenerator {
	g.randN = randN
	return g
}

// MaxAttempts presupuesto de intentos; también acota los reintentos por colisión al insertar.
func (g *ReferenceGenerator) MaxAttempts() int { return g.maxAttempts }

// Generate devuelve un código libre. Reintenta ante colisión hasta maxAttempts veces.
func (g *ReferenceGenerator) Generate(ctx context.Context, checker ReferenceChecker, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: prefijo vacío", domain.ErrInvalidInput)
	}
	date := g.now().Format("20060102")
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code := fmt.Sprintf("%s-%s-%04d", prefix, date, g.randN(10000))
		exists, err := checker.ExistsByReference(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %d intentos con prefijo %s", domain.ErrGenerationExhausted, g.maxAttempts, prefix)
}
