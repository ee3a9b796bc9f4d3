package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/radio-bridge/internal/config"
	"github.com/oshokin/radio-bridge/internal/device/adb"
	"github.com/oshokin/radio-bridge/internal/domain/fallback"
	"github.com/oshokin/radio-bridge/internal/domain/optimization"
	"github.com/oshokin/radio-bridge/internal/domain/radio"
	"github.com/oshokin/radio-bridge/internal/domain/stability"
	"github.com/oshokin/radio-bridge/internal/logger"
	"github.com/oshokin/radio-bridge/internal/metrics"
	repo "github.com/oshokin/radio-bridge/internal/repository/optimization"
)

// Values reported where the handset gives nothing.
const (
	unknownValue      = "Unknown"
	mobileConnection  = "MOBILE"
	notMeasuredMetric = stability.NotAvailable
)

// Device is the handset collaborator: telephony reads and activity launches.
type Device interface {
	Snapshot(ctx context.Context) (*radio.Snapshot, error)
	Launch(ctx context.Context, intent adb.Intent) error
}

// service implements the method channel operations.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// device reads telephony state and launches activities.
	device Device
	// tracker accumulates the stability session.
	tracker *stability.Tracker
	// repo persists optimization settings; nil keeps them in memory.
	repo repo.Repository
	// settings is the current optimization state.
	settings optimization.Settings
	// candidates are the testing menu routes in priority order.
	candidates []fallback.Candidate[adb.Intent]
	// metrics counts attempts and events; nil disables it.
	metrics *metrics.Metrics
	// pollInterval is the watcher period.
	pollInterval time.Duration
	// watcher is the running stability watcher, nil when stopped.
	watcher *watcher
	// mu protects settings and watcher.
	mu sync.Mutex
}

// serviceOptions groups the collaborators of a service.
type serviceOptions struct {
	// device is the handset collaborator.
	device Device
	// repo persists optimization settings.
	repo repo.Repository
	// testingMenu lists the testing menu routes.
	testingMenu []config.LaunchTarget
	// metrics is optional.
	metrics *metrics.Metrics
	// pollInterval is the watcher period.
	pollInterval time.Duration
	// trackerOptions configure the stability tracker.
	trackerOptions []stability.Option
}

// newService creates a service and loads the stored optimization settings.
func newService(ctx context.Context, opts serviceOptions) (*service, error) {
	s := &service{
		device:       opts.device,
		tracker:      stability.NewTracker(opts.trackerOptions...),
		repo:         opts.repo,
		settings:     optimization.Defaults(),
		candidates:   testingMenuCandidates(opts.testingMenu),
		metrics:      opts.metrics,
		pollInterval: opts.pollInterval,
	}

	if s.pollInterval <= 0 {
		s.pollInterval = config.DefaultPollInterval
	}

	if s.repo == nil {
		return s, nil
	}

	settings, err := s.repo.Load(ctx)
	switch {
	case err == nil:
		s.settings = settings.Normalize()
	case errors.Is(err, repo.ErrNotFound):
		// Keep defaults.
	default:
		return nil, fmt.Errorf("load optimization settings: %w", err)
	}

	return s, nil
}

// testingMenuCandidates converts configured routes into fallback candidates.
func testingMenuCandidates(targets []config.LaunchTarget) []fallback.Candidate[adb.Intent] {
	candidates := make([]fallback.Candidate[adb.Intent], 0, len(targets))

	for _, target := range targets {
		candidates = append(candidates, fallback.Candidate[adb.Intent]{
			Name: target.Name,
			Action: adb.Intent{
				Action:    target.Action,
				Component: target.Component,
				Data:      target.Data,
			},
		})
	}

	return candidates
}

// RadioInfo reads the handset and renders the radio_info map.
func (s *service) RadioInfo(ctx context.Context) (map[string]any, error) {
	snapshot, err := s.device.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read radio info: %w", err)
	}

	return radioInfoFields(snapshot), nil
}

// radioInfoFields renders a snapshot with the keys clients already know.
func radioInfoFields(snapshot *radio.Snapshot) map[string]any {
	classification := radio.Classify(snapshot.NetworkType)

	fields := map[string]any{
		"operator":        snapshot.OperatorName,
		"mcc":             orUnknown(snapshot.MCC),
		"mnc":             orUnknown(snapshot.MNC),
		"isRoaming":       snapshot.IsRoaming,
		"dataState":       snapshot.DataState.String(),
		"dataActivity":    snapshot.DataActivity.String(),
		"networkType":     classification.DisplayName,
		"radioTechnology": classification.Family.String(),
		"networkClass":    classification.Generation.String(),
		"signalStrength":  signalField(snapshot),
	}

	if snapshot.CellID != "" {
		fields["cellId"] = snapshot.CellID
	}

	if snapshot.AreaCode != "" {
		fields["lac"] = snapshot.AreaCode
	}

	return fields
}

// OpenTestingMenu launches the first testing menu route the handset accepts.
func (s *service) OpenTestingMenu(ctx context.Context) (string, error) {
	ctx = logger.WithName(ctx, "testing-menu")

	outcome, err := fallback.Execute(ctx, s.candidates, s.device.Launch,
		s.logAttempt,
		s.metrics.ObserveAttempt,
	)
	if err != nil {
		logger.WarnKV(ctx, "Testing menu could not be opened", "error", err)

		return "", err
	}

	logger.InfoKV(ctx, "Testing menu opened",
		"candidate", outcome.Selected.Name,
		"failed_candidates", len(outcome.Failures))

	return outcome.Selected.Name, nil
}

// logAttempt reports every launch attempt at debug level.
func (s *service) logAttempt(ctx context.Context, candidate string, err error) {
	if err != nil {
		logger.DebugKV(ctx, "Testing menu route failed", "candidate", candidate, "error", err)

		return
	}

	logger.DebugKV(ctx, "Testing menu route started", "candidate", candidate)
}

// PerformanceData renders the performance map.
// Throughput and latency are not measured and always report N/A.
func (s *service) PerformanceData(ctx context.Context) (map[string]any, error) {
	snapshot, err := s.device.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read performance data: %w", err)
	}

	connectionType := unknownValue
	if snapshot.Connected() {
		connectionType = mobileConnection
	}

	return map[string]any{
		"signalStrength": signalField(snapshot),
		"downloadSpeed":  notMeasuredMetric,
		"uploadSpeed":    notMeasuredMetric,
		"latency":        notMeasuredMetric,
		"jitter":         notMeasuredMetric,
		"packetLoss":     notMeasuredMetric,
		"isConnected":    snapshot.Connected(),
		"connectionType": connectionType,
	}, nil
}

// ApplyOptimization sets one toggle and persists the result.
func (s *service) ApplyOptimization(ctx context.Context, setting optimization.Setting, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	next[setting] = enabled

	if err := s.saveSettings(ctx, next); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Optimization applied", "setting", setting, "enabled", enabled)

	return nil
}

// OptimizeAll turns every toggle on.
func (s *service) OptimizeAll(ctx context.Context) error {
	return s.applyUniform(ctx, true)
}

// ResetOptimizations turns every toggle off.
func (s *service) ResetOptimizations(ctx context.Context) error {
	return s.applyUniform(ctx, false)
}

// applyUniform sets every toggle to enabled.
func (s *service) applyUniform(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveSettings(ctx, optimization.Uniform(enabled)); err != nil {
		return err
	}

	logger.InfoKV(ctx, "All optimizations updated", "enabled", enabled)

	return nil
}

// saveSettings persists next and makes it current. Callers hold s.mu.
func (s *service) saveSettings(ctx context.Context, next optimization.Settings) error {
	if s.repo != nil {
		if err := s.repo.Save(ctx, next); err != nil {
			logger.ErrorKV(ctx, "Failed to persist optimization settings", "error", err)

			return fmt.Errorf("persist optimization settings: %w", err)
		}
	}

	s.settings = next

	return nil
}

// Optimizations returns a copy of the current toggles.
func (s *service) Optimizations(context.Context) optimization.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings.Clone()
}

// StabilityMetrics summarizes the current session.
func (s *service) StabilityMetrics(ctx context.Context) stability.Summary {
	summary := s.tracker.Summarize()
	s.metrics.SetScore(summary.StabilityScore)

	logger.DebugKV(ctx, "Stability metrics requested",
		"active", s.tracker.Active(),
		"score", summary.StabilityScore)

	return summary
}

// EnableStabilityMode starts a fresh session and (re)starts the watcher.
func (s *service) EnableStabilityMode(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcherLocked()
	s.tracker.Enable()
	s.watcher = startWatcher(ctx, s.device, s.pollInterval, s.recordDetected)

	logger.InfoKV(ctx, "Stability mode enabled", "poll_interval", s.pollInterval.String())
}

// DisableStabilityMode stops the watcher and ends the session.
func (s *service) DisableStabilityMode(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcherLocked()
	s.tracker.Disable()

	logger.Info(ctx, "Stability mode disabled")
}

// RecordEvent feeds an externally observed event into the session.
// Events outside an active session are dropped.
func (s *service) RecordEvent(ctx context.Context, kind stability.EventKind, value float64) error {
	counted, err := s.tracker.Record(kind, value)
	if err != nil {
		return fmt.Errorf("record %s: %w", kind, err)
	}

	if counted {
		s.metrics.ObserveEvent(string(kind))
	}

	logger.DebugKV(ctx, "Stability event recorded", "event", kind, "value", value)

	return nil
}

// recordDetected is the watcher sink.
func (s *service) recordDetected(ctx context.Context, e event) {
	if err := s.RecordEvent(ctx, e.kind, e.value); err != nil {
		logger.WarnKV(ctx, "Dropping detected event", "event", e.kind, "error", err)
	}
}

// Close stops the watcher if it is running.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcherLocked()
}

// stopWatcherLocked stops the running watcher and waits for it. Callers hold s.mu.
func (s *service) stopWatcherLocked() {
	if s.watcher == nil {
		return
	}

	s.watcher.stop()
	s.watcher = nil
}

// signalField returns the signal in dBm or "Unknown".
func signalField(snapshot *radio.Snapshot) any {
	if snapshot.SignalStrength == nil {
		return unknownValue
	}

	return *snapshot.SignalStrength
}

// orUnknown replaces an empty value with "Unknown".
func orUnknown(value string) string {
	if value == "" {
		return unknownValue
	}

	return value
}
