package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.Transition("", entity.RMAStatusPending)
	r.Transition(entity.RMAStatusPending, entity.RMAStatusApproved)
	r.Transition(entity.RMAStatusPending, entity.RMAStatusApproved)
	r.Refunded(decimal.RequireFromString("90.50"))
	r.Refunded(decimal.RequireFromString("-1"))
	r.Restocked(3)
	r.Restocked(0)
	r.NotificationFailed("approved")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("NONE", "PENDING")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("PENDING", "APPROVED")))
	assert.Equal(t, 90.5, testutil.ToFloat64(r.refundedAmount))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.restockedUnits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.notificationFailure.WithLabelValues("approved")))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Restocked(2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "rma_restocked_units_total 2"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
