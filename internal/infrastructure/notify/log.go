package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/rma-api/internal/application/rma"
)

// LogNotifier solo registra el evento. Se usa cuando no hay SMTP configurado.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, rmaID string, event rma.Event) error {
	n.log.Info().Str("rma_id", rmaID).Str("event", string(event)).Msg("notificación rma")
	return nil
}
