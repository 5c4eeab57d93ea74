package rma_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/rma"
)

type fakeChecker struct {
	taken map[string]bool
	calls int
	err   error
}

func (f *fakeChecker) ExistsByReference(_ context.Context, code string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.taken[code], nil
}

var fixedDay = time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)

func sequence(values ...int) func(int) int {
	i := 0
	return func(int) int {
		v := values[i%len(values)]
		i++
		return v
	}
}

func TestReferenceGenerator_Formato(t *testing.T) {
	g := rma.NewReferenceGenerator(0).
		WithClock(func() time.Time { return fixedDay }).
		WithRandom(sequence(42))

	code, err := g.Generate(context.Background(), &fakeChecker{}, "RMA")
	require.NoError(t, err)
	assert.Equal(t, "RMA-20260307-0042", code)
	assert.Regexp(t, regexp.MustCompile(`^RMA-\d{8}-\d{4}$`), code)
}

func TestReferenceGenerator_ReintentaAnteColision(t *testing.T) {
	checker := &fakeChecker{taken: map[string]bool{"VENDOR-20260307-0001": true}}
	g := rma.NewReferenceGenerator(5).
		WithClock(func() time.Time { return fixedDay }).
		WithRandom(sequence(1, 2))

	code, err := g.Generate(context.Background(), checker, "VENDOR")
	require.NoError(t, err)
	assert.Equal(t, "VENDOR-20260307-0002", code)
	assert.Equal(t, 2, checker.calls)
}

func TestReferenceGenerator_AgotaIntentos(t *testing.T) {
	checker := &fakeChecker{taken: map[string]bool{"RMA-20260307-0007": true}}
	g := rma.NewReferenceGenerator(3).
		WithClock(func() time.Time { return fixedDay }).
		WithRandom(sequence(7))

	_, err := g.Generate(context.Background(), checker, "RMA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGenerationExhausted))
	assert.Equal(t, 3, checker.calls, "debe detenerse exactamente en el límite")
}

func TestReferenceGenerator_PropagaErrorDelChequeo(t *testing.T) {
	boom := errors.New("db caída")
	g := rma.NewReferenceGenerator(3)
	_, err := g.Generate(context.Background(), &fakeChecker{err: boom}, "RMA")
	assert.ErrorIs(t, err, boom)
}

func TestReferenceGenerator_PrefijoVacio(t *testing.T) {
	_, err := rma.NewReferenceGenerator(3).Generate(context.Background(), &fakeChecker{}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
