package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// TestObserveAttempt verifies attempts are split by candidate and result.
func TestObserveAttempt(t *testing.T) {
	t.Parallel()

	m := New()
	ctx := context.Background()

	m.ObserveAttempt(ctx, "radio-info-settings", errors.New("does not exist"))
	m.ObserveAttempt(ctx, "radio-info-phone", nil)
	m.ObserveAttempt(ctx, "radio-info-phone", nil)

	require.InDelta(t, 1, testutil.ToFloat64(m.fallbackAttempts.WithLabelValues("radio-info-settings", ResultFailure)), 0)
	require.InDelta(t, 2, testutil.ToFloat64(m.fallbackAttempts.WithLabelValues("radio-info-phone", ResultSuccess)), 0)
}

// TestEventsAndScore verifies event counters and the score gauge.
func TestEventsAndScore(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveEvent("handover")
	m.ObserveEvent("handover")
	m.SetScore(57)

	require.InDelta(t, 2, testutil.ToFloat64(m.stabilityEvents.WithLabelValues("handover")), 0)
	require.InDelta(t, 57, testutil.ToFloat64(m.stabilityScore), 0)
}

// TestNilMetrics verifies a nil collector set is a no-op.
func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics

	require.NotPanics(t, func() {
		m.ObserveAttempt(context.Background(), "x", nil)
		m.ObserveEvent("handover")
		m.SetScore(10)
	})
}

// TestHandler verifies the registry is exposed in the text format.
func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.SetScore(88)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "radio_bridge_stability_score 88")
}
