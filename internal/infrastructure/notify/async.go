package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/rma-api/internal/application/rma"
)

// AsyncNotifier ejecuta el notificador interno en una goroutine y retorna de inmediato.
// El contexto del request se desacopla con context.WithoutCancel y se acota con timeout.
type AsyncNotifier struct {
	next    rma.Notifier
	timeout time.Duration
	log     zerolog.Logger
	metrics rma.Recorder
	wg      sync.WaitGroup
}

var _ rma.Notifier = (*AsyncNotifier)(nil)

// NewAsyncNotifier envuelve next. timeout <= 0 usa 15s.
func NewAsyncNotifier(next rma.Notifier, timeout time.Duration, log zerolog.Logger) *AsyncNotifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &AsyncNotifier{next: next, timeout: timeout, log: log}
}

// WithMetrics cuenta las entregas fallidas.
func (a *AsyncNotifier) WithMetrics(rec rma.Recorder) *AsyncNotifier {
	a.metrics = rec
	return a
}

func (a *AsyncNotifier) Notify(ctx context.Context, rmaID string, event rma.Event) error {
	bg := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(bg, a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, rmaID, event); err != nil {
			if a.metrics != nil {
				a.metrics.NotificationFailed(string(event))
			}
			a.log.Warn().Err(err).Str("rma_id", rmaID).Str("event", string(event)).Msg("notificación fallida")
		}
	}()
	return nil
}

// Wait bloquea hasta que terminan las notificaciones en curso; se usa al apagar el servidor.
func (a *AsyncNotifier) Wait() {
	a.wg.Wait()
}
