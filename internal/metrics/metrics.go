package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/radio-bridge/internal/logger"
)

const namespace = "radio_bridge"

// Attempt results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// shutdownTimeout bounds the graceful stop of the metrics endpoint.
const shutdownTimeout = 5 * time.Second

// Metrics holds the bridge collectors and the registry they are exposed from.
type Metrics struct {
	// registry is private to the bridge so tests never share collectors.
	registry *prometheus.Registry
	// fallbackAttempts counts launch attempts by candidate and result.
	fallbackAttempts *prometheus.CounterVec
	// stabilityEvents counts recorded tracker events by kind.
	stabilityEvents *prometheus.CounterVec
	// stabilityScore is the score of the last summary.
	stabilityScore prometheus.Gauge
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fallbackAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_attempts_total",
			Help:      "Testing menu launch attempts by candidate and result.",
		}, []string{"candidate", "result"}),
		stabilityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stability_events_total",
			Help:      "Network events recorded while stability mode is active.",
		}, []string{"event"}),
		stabilityScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stability_score",
			Help:      "Stability score of the last summary, 0..100.",
		}),
	}

	m.registry.MustRegister(m.fallbackAttempts, m.stabilityEvents, m.stabilityScore)

	return m
}

// Gatherer exposes the registry for scraping outside the HTTP endpoint.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveAttempt counts one fallback attempt. Its signature matches fallback.Observer.
func (m *Metrics) ObserveAttempt(_ context.Context, candidate string, err error) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.fallbackAttempts.WithLabelValues(candidate, result).Inc()
}

// ObserveEvent counts one recorded stability event.
func (m *Metrics) ObserveEvent(event string) {
	if m == nil {
		return
	}

	m.stabilityEvents.WithLabelValues(event).Inc()
}

// SetScore stores the latest stability score.
func (m *Metrics) SetScore(score int) {
	if m == nil {
		return
	}

	m.stabilityScore.Set(float64(score))
}

// Handler returns the HTTP handler serving the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// Serve exposes /metrics on address until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	//nolint:exhaustruct // Defaults are fine for the remaining fields.
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.WarnKV(ctx, "Metrics endpoint shutdown failed", "error", shutdownErr)
		}
	}()

	logger.InfoKV(ctx, "Metrics endpoint listening", "address", listener.Addr().String())

	if err = server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics endpoint: %w", err)
	}

	return nil
}
