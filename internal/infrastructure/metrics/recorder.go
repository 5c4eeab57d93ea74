// Package metrics expone contadores Prometheus del flujo de devoluciones.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/application/rma"
	"github.com/jhoicas/rma-api/internal/domain/entity"
)

const namespace = "rma"

// Recorder implementa rma.Recorder sobre un registry propio.
type Recorder struct {
	registry            *prometheus.Registry
	transitions         *prometheus.CounterVec
	refundedAmount      prometheus.Counter
	restockedUnits      prometheus.Counter
	notificationFailure *prometheus.CounterVec
}

var _ rma.Recorder = (*Recorder)(nil)

// NewRecorder crea los contadores y los registra junto con los colectores de runtime.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Transiciones de estado aplicadas, por estado origen y destino.",
		}, []string{"from", "to"}),
		refundedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunded_amount_total",
			Help:      "Suma de montos reembolsados.",
		}),
		restockedUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restocked_units_total",
			Help:      "Unidades devueltas al inventario.",
		}),
		notificationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notificaciones que fallaron, por evento.",
		}, []string{"event"}),
	}
	reg.MustRegister(
		r.transitions, r.refundedAmount, r.restockedUnits, r.notificationFailure,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Transition cuenta un paso de estado. La creación llega con from vacío y se etiqueta "NONE".
func (r *Recorder) Transition(from, to entity.RMAStatus) {
	f := string(from)
	if f == "" {
		f = "NONE"
	}
	r.transitions.WithLabelValues(f, string(to)).Inc()
}

func (r *Recorder) Refunded(amount decimal.Decimal) {
	if amount.IsNegative() {
		return
	}
	v, _ := amount.Float64()
	r.refundedAmount.Add(v)
}

func (r *Recorder) Restocked(units int) {
	if units <= 0 {
		return
	}
	r.restockedUnits.Add(float64(units))
}

func (r *Recorder) NotificationFailed(event string) {
	r.notificationFailure.WithLabelValues(event).Inc()
}

// Registry expuesto para tests y para registrar colectores adicionales.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler sirve el formato de exposición de Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
