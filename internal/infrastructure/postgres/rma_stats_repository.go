package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/rma-api/internal/domain/repository"
)

var _ repository.RMAStatsRepository = (*RMAStatsRepo)(nil)

// RMAStatsRepo consultas de agregación read-only sobre rma_requests.
type RMAStatsRepo struct {
	q Querier
}

// NewRMAStatsRepository construye el adaptador.
func NewRMAStatsRepository(q Querier) *RMAStatsRepo {
	return &RMAStatsRepo{q: q}
}

// GetStats cuenta por estado y suma montos de las solicitudes creadas en [from, to].
// COALESCE garantiza ceros cuando no hay filas.
func (r *RMAStatsRepo) GetStats(ctx context.Context, from, to time.Time) (repository.RMAStatsResult, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'APPROVED'),
			COUNT(*) FILTER (WHERE status = 'REJECTED'),
			COUNT(*) FILTER (WHERE status = 'RECEIVED'),
			COUNT(*) FILTER (WHERE status = 'REFUNDED'),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(refund_amount), 0),
			COALESCE(SUM(restocking_fee), 0)
		FROM rma_requests
		WHERE requested_at BETWEEN $1 AND $2`
	var res repository.RMAStatsResult
	err := r.q.QueryRow(ctx, query, from, to).Scan(
		&res.Total, &res.Pending, &res.Approved, &res.Rejected, &res.Received, &res.Refunded,
		&res.TotalAmount, &res.RefundAmount, &res.RestockingFeeTotal,
	)
	if err != nil {
		return repository.RMAStatsResult{}, storageErr("rma stats", err)
	}
	return res, nil
}

// GetTopReasons motivos más frecuentes del período (normalizados a minúsculas).
func (r *RMAStatsRepo) GetTopReasons(ctx context.Context, from, to time.Time, limit int) ([]repository.ReasonCount, error) {
	query := `
		SELECT LOWER(reason) AS reason, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM rma_requests
		WHERE requested_at BETWEEN $1 AND $2
		GROUP BY LOWER(reason)
		ORDER BY COUNT(*) DESC, reason
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, storageErr("rma top reasons", err)
	}
	defer rows.Close()
	var list []repository.ReasonCount
	for rows.Next() {
		var rc repository.ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Count, &rc.Amount); err != nil {
			return nil, storageErr("scan reason", err)
		}
		list = append(list, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("rma top reasons", err)
	}
	return list, nil
}
