// Package analytics contiene los casos de uso de reportes de devoluciones (solo lectura).
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/rma-api/internal/application/dto"
	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

const statsTopReasons = 5 // motivos en el ranking

// RMAStatsUseCase agrega conteos y montos de devoluciones en un período.
//
// Fuente de datos: RMAStatsRepository (consultas read-only). Un período sin filas devuelve ceros.
type RMAStatsUseCase struct {
	statsRepo repository.RMAStatsRepository
	now       func() time.Time
}

// NewRMAStatsUseCase construye el caso de uso.
func NewRMAStatsUseCase(statsRepo repository.RMAStatsRepository) *RMAStatsUseCase {
	return &RMAStatsUseCase{statsRepo: statsRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *RMAStatsUseCase) WithClock(now func() time.Time) *RMAStatsUseCase {
	uc.now = now
	return uc
}

// GetStats construye el RMAStatsDTO para el rango [startStr, endStr] (formato YYYY-MM-DD).
//
// Dos llamadas en paralelo:
//  1. GetStats        → conteos por estado y sumas de montos
//  2. GetTopReasons   → motivos más frecuentes
func (uc *RMAStatsUseCase) GetStats(ctx context.Context, startStr, endStr string) (*dto.RMAStatsDTO, error) {
	start, end, err := uc.parsePeriod(startStr, endStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	type statsResult struct {
		stats repository.RMAStatsResult
		err   error
	}
	type reasonsResult struct {
		reasons []repository.ReasonCount
		err     error
	}

	statsCh := make(chan statsResult, 1)
	reasonsCh := make(chan reasonsResult, 1)

	go func() {
		s, err := uc.statsRepo.GetStats(ctx, start, end)
		statsCh <- statsResult{s, err}
	}()
	go func() {
		r, err := uc.statsRepo.GetTopReasons(ctx, start, end, statsTopReasons)
		reasonsCh <- reasonsResult{r, err}
	}()

	stats := <-statsCh
	reasons := <-reasonsCh

	if stats.err != nil {
		return nil, fmt.Errorf("rma stats: agregados: %w", stats.err)
	}
	if reasons.err != nil {
		return nil, fmt.Errorf("rma stats: motivos: %w", reasons.err)
	}

	top := make([]dto.RMAReasonDTO, 0, len(reasons.reasons))
	for _, r := range reasons.reasons {
		top = append(top, dto.RMAReasonDTO{Reason: r.Reason, Count: r.Count, Amount: r.Amount.Round(2)})
	}

	s := stats.stats
	return &dto.RMAStatsDTO{
		StartDate:          start.Format("2006-01-02"),
		EndDate:            end.Format("2006-01-02"),
		TotalRequests:      s.Total,
		Pending:            s.Pending,
		Approved:           s.Approved,
		Rejected:           s.Rejected,
		Received:           s.Received,
		Completed:          s.Refunded,
		TotalAmount:        s.TotalAmount.Round(2),
		RefundAmount:       s.RefundAmount.Round(2),
		RestockingFeeTotal: s.RestockingFeeTotal.Round(2),
		TopReasons:         top,
	}, nil
}

// parsePeriod convierte strings "YYYY-MM-DD" a time.Time con defaults:
//   - start vacío → primer día del mes actual
//   - end vacío   → ahora
func (uc *RMAStatsUseCase) parsePeriod(startStr, endStr string) (start, end time.Time, err error) {
	now := uc.now()

	if endStr == "" {
		end = now
	} else {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to inválido: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond) // inclusive hasta el final del día
	}

	if startStr == "" {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from inválido: %w", err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("from no puede ser posterior a to")
	}
	return start, end, nil
}
