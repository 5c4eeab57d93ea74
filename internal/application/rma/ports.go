package rma

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback completo; si no, Commit.
type TxRunner interface {
	RunRMA(ctx context.Context, fn func(
		rmaRepo repository.RMARepository,
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}

// Event nombre del evento notificado tras una transición.
type Event string

const (
	EventCreated          Event = "created"
	EventApproved         Event = "approved"
	EventRejected         Event = "rejected"
	EventRefunded         Event = "refunded"
	EventVendorRMACreated Event = "vendor_rma_created"
)

// Notifier entrega notificaciones best-effort (email, etc.). Se invoca solo después del Commit;
// su error se registra y nunca se propaga al caller.
type Notifier interface {
	Notify(ctx context.Context, rmaID string, event Event) error
}

// Recorder recibe métricas del flujo. Implementación Prometheus en infrastructure/metrics.
type Recorder interface {
	Transition(from, to entity.RMAStatus)
	Refunded(amount decimal.Decimal)
	Restocked(units int)
	NotificationFailed(event string)
}

type nopRecorder struct{}

func (nopRecorder) Transition(entity.RMAStatus, entity.RMAStatus) {}
func (nopRecorder) Refunded(decimal.Decimal)                      {}
func (nopRecorder) Restocked(int)                                 {}
func (nopRecorder) NotificationFailed(string)                     {}
