package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RMAStatsResult agregados crudos de devoluciones en un período.
type RMAStatsResult struct {
	Total              int
	Pending            int
	Approved           int
	Rejected           int
	Received           int
	Refunded           int
	TotalAmount        decimal.Decimal
	RefundAmount       decimal.Decimal
	RestockingFeeTotal decimal.Decimal
}

// ReasonCount cantidad de devoluciones por motivo.
type ReasonCount struct {
	Reason string
	Count  int
	Amount decimal.Decimal
}

// RMAStatsRepository consultas read-only para reportes de devoluciones.
// Usa COALESCE para devolver ceros si no hay filas en el período.
type RMAStatsRepository interface {
	GetStats(ctx context.Context, from, to time.Time) (RMAStatsResult, error)
	GetTopReasons(ctx context.Context, from, to time.Time, limit int) ([]ReasonCount, error)
}
