package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/radio-bridge/internal/config"
	"github.com/oshokin/radio-bridge/internal/device/adb"
	"github.com/oshokin/radio-bridge/internal/domain/fallback"
	"github.com/oshokin/radio-bridge/internal/domain/optimization"
	"github.com/oshokin/radio-bridge/internal/domain/radio"
	"github.com/oshokin/radio-bridge/internal/domain/stability"
	"github.com/oshokin/radio-bridge/internal/metrics"
	repo "github.com/oshokin/radio-bridge/internal/repository/optimization"
)

var errTestLoad = errors.New("test load error")

// fakeDevice serves scripted snapshots and launch results.
type fakeDevice struct {
	mu sync.Mutex
	// snapshots are returned in order; the last one repeats.
	snapshots []*radio.Snapshot
	// snapshotErr is returned instead of a snapshot when set.
	snapshotErr error
	// launchErrs maps a component or action to its launch error.
	launchErrs map[string]error
	// launched records attempted intents in order.
	launched []adb.Intent
}

func (f *fakeDevice) Snapshot(context.Context) (*radio.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}

	current := f.snapshots[0]
	if len(f.snapshots) > 1 {
		f.snapshots = f.snapshots[1:]
	}

	return current, nil
}

func (f *fakeDevice) Launch(_ context.Context, intent adb.Intent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.launched = append(f.launched, intent)

	if err, ok := f.launchErrs[intent.Component]; ok {
		return err
	}

	return f.launchErrs[intent.Action]
}

func (f *fakeDevice) Launched() []adb.Intent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.launched
}

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// settings is returned from Load.
	settings optimization.Settings
	// loadErr is the error to return from Load.
	loadErr error
	// saveErr is the error to return from Save.
	saveErr error
	// saved stores the last settings passed to Save.
	saved optimization.Settings
}

func (m *memoryRepository) Load(context.Context) (optimization.Settings, error) {
	return m.settings, m.loadErr
}

func (m *memoryRepository) Save(_ context.Context, settings optimization.Settings) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = settings

	return nil
}

func intPtr(v int) *int {
	return &v
}

func lteSnapshot() *radio.Snapshot {
	return &radio.Snapshot{
		OperatorName:   "Telkomsel",
		MCC:            "510",
		MNC:            "10",
		DataState:      radio.DataStateConnected,
		DataActivity:   radio.DataActivityInOut,
		NetworkType:    radio.CodeLTE,
		CellID:         "27440642",
		AreaCode:       "12012",
		SignalStrength: intPtr(-97),
	}
}

// TestNewService_LoadsSettingsOrDefaults asserts newService behavior on existing, missing and broken settings.
func TestNewService_LoadsSettingsOrDefaults(t *testing.T) {
	t.Parallel()

	stored := optimization.Uniform(true)

	s, err := newService(context.Background(), serviceOptions{repo: &memoryRepository{settings: stored}})
	require.NoError(t, err)
	require.Equal(t, stored, s.Optimizations(context.Background()))
	require.Equal(t, config.DefaultPollInterval, s.pollInterval)

	s, err = newService(context.Background(), serviceOptions{repo: &memoryRepository{loadErr: repo.ErrNotFound}})
	require.NoError(t, err)
	require.Equal(t, optimization.Defaults(), s.Optimizations(context.Background()))

	s, err = newService(context.Background(), serviceOptions{repo: &memoryRepository{loadErr: errTestLoad}})
	require.ErrorIs(t, err, errTestLoad)
	require.Nil(t, s)

	// An empty store loads as no settings at all.
	empty := new(memoryRepository)

	s, err = newService(context.Background(), serviceOptions{repo: empty})
	require.NoError(t, err)
	require.Equal(t, optimization.Defaults(), s.Optimizations(context.Background()))
	require.NotPanics(t, func() {
		require.NoError(t, s.ApplyOptimization(context.Background(), optimization.Force4G, true))
	})
	require.True(t, empty.saved[optimization.Force4G])
}

// TestService_RadioInfo verifies the radio_info map keys and values.
func TestService_RadioInfo(t *testing.T) {
	t.Parallel()

	device := &fakeDevice{snapshots: []*radio.Snapshot{lteSnapshot()}}
	s, err := newService(context.Background(), serviceOptions{device: device})
	require.NoError(t, err)

	info, err := s.RadioInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"operator":        "Telkomsel",
		"mcc":             "510",
		"mnc":             "10",
		"isRoaming":       false,
		"dataState":       "Connected",
		"dataActivity":    "In/Out",
		"networkType":     "LTE",
		"radioTechnology": "LTE",
		"networkClass":    "4G",
		"cellId":          "27440642",
		"lac":             "12012",
		"signalStrength":  -97,
	}, info)
}

// TestRadioInfoFields_Missing verifies absent values are reported as Unknown or omitted.
func TestRadioInfoFields_Missing(t *testing.T) {
	t.Parallel()

	info := radioInfoFields(&radio.Snapshot{
		DataState:    radio.DataStateUnknown,
		DataActivity: radio.DataActivityUnknown,
		NetworkType:  radio.Code(99),
	})

	require.Equal(t, "Unknown", info["mcc"])
	require.Equal(t, "Unknown", info["mnc"])
	require.Equal(t, "Unknown", info["signalStrength"])
	require.Equal(t, "Unknown (99)", info["networkType"])
	require.Equal(t, "Unknown", info["radioTechnology"])
	require.Equal(t, "Unknown", info["networkClass"])
	require.NotContains(t, info, "cellId")
	require.NotContains(t, info, "lac")
}

// TestService_PerformanceData verifies connectivity is derived from the snapshot and speeds are not measured.
func TestService_PerformanceData(t *testing.T) {
	t.Parallel()

	disconnected := lteSnapshot()
	disconnected.DataState = radio.DataStateDisconnected
	disconnected.SignalStrength = nil

	device := &fakeDevice{snapshots: []*radio.Snapshot{lteSnapshot(), disconnected}}
	s, err := newService(context.Background(), serviceOptions{device: device})
	require.NoError(t, err)

	data, err := s.PerformanceData(context.Background())
	require.NoError(t, err)
	require.Equal(t, true, data["isConnected"])
	require.Equal(t, "MOBILE", data["connectionType"])
	require.Equal(t, -97, data["signalStrength"])
	require.Equal(t, "N/A", data["downloadSpeed"])
	require.Equal(t, "N/A", data["packetLoss"])

	data, err = s.PerformanceData(context.Background())
	require.NoError(t, err)
	require.Equal(t, false, data["isConnected"])
	require.Equal(t, "Unknown", data["connectionType"])
	require.Equal(t, "Unknown", data["signalStrength"])
}

// TestService_DeviceError verifies snapshot failures are returned wrapped.
func TestService_DeviceError(t *testing.T) {
	t.Parallel()

	device := &fakeDevice{snapshotErr: adb.ErrDevice}
	s, err := newService(context.Background(), serviceOptions{device: device})
	require.NoError(t, err)

	_, err = s.RadioInfo(context.Background())
	require.ErrorIs(t, err, adb.ErrDevice)

	_, err = s.PerformanceData(context.Background())
	require.ErrorIs(t, err, adb.ErrDevice)
}

// TestService_OpenTestingMenu verifies routes are tried in order until one starts.
func TestService_OpenTestingMenu(t *testing.T) {
	t.Parallel()

	device := &fakeDevice{launchErrs: map[string]error{
		"com.android.settings/.RadioInfo":       adb.ErrActivityNotFound,
		"com.android.phone/.settings.RadioInfo": adb.ErrLaunchFailed,
	}}

	collectors := metrics.New()

	s, err := newService(context.Background(), serviceOptions{
		device:      device,
		testingMenu: config.DefaultTestingMenu(),
		metrics:     collectors,
	})
	require.NoError(t, err)

	selected, err := s.OpenTestingMenu(context.Background())
	require.NoError(t, err)
	require.Equal(t, "samsung-telephony-ui", selected)
	require.Len(t, device.Launched(), 3)
}

// TestService_OpenTestingMenu_Exhausted verifies every route is attempted before failing.
func TestService_OpenTestingMenu_Exhausted(t *testing.T) {
	t.Parallel()

	menu := config.DefaultTestingMenu()
	launchErrs := make(map[string]error, len(menu))

	for _, target := range menu {
		key := target.Component
		if key == "" {
			key = target.Action
		}

		launchErrs[key] = adb.ErrActivityNotFound
	}

	device := &fakeDevice{launchErrs: launchErrs}
	s, err := newService(context.Background(), serviceOptions{device: device, testingMenu: menu})
	require.NoError(t, err)

	_, err = s.OpenTestingMenu(context.Background())
	require.ErrorIs(t, err, fallback.ErrExhausted)

	var exhausted *fallback.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, len(menu))
	require.Equal(t, menu[0].Name, exhausted.Failures[0].Candidate)
	require.Len(t, device.Launched(), len(menu))
}

// TestService_Optimizations verifies toggles are applied, persisted and reset.
func TestService_Optimizations(t *testing.T) {
	t.Parallel()

	storage := new(memoryRepository)
	s, err := newService(context.Background(), serviceOptions{repo: storage})
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, s.ApplyOptimization(ctx, optimization.Force4G, true))
	require.True(t, storage.saved[optimization.Force4G])
	require.False(t, storage.saved[optimization.LowLatencyMode])

	require.NoError(t, s.OptimizeAll(ctx))
	require.Equal(t, optimization.Uniform(true), s.Optimizations(ctx))

	require.NoError(t, s.ResetOptimizations(ctx))
	require.Equal(t, optimization.Defaults(), storage.saved)

	// Returned settings are copies.
	current := s.Optimizations(ctx)
	current[optimization.Force4G] = true
	require.False(t, s.Optimizations(ctx)[optimization.Force4G])
}

// TestService_OptimizationSaveFails verifies a failed save leaves the current settings untouched.
func TestService_OptimizationSaveFails(t *testing.T) {
	t.Parallel()

	storage := &memoryRepository{saveErr: errors.New("disk full")}
	s, err := newService(context.Background(), serviceOptions{repo: storage})
	require.NoError(t, err)

	require.Error(t, s.ApplyOptimization(context.Background(), optimization.PreferHighBand, true))
	require.False(t, s.Optimizations(context.Background())[optimization.PreferHighBand])
}

// TestService_StabilityMode verifies the watcher feeds the tracker while stability mode is active.
func TestService_StabilityMode(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		handover := lteSnapshot()
		handover.CellID = "27440643"
		handover.SignalStrength = intPtr(-44)

		dropped := lteSnapshot()
		dropped.CellID = "27440643"
		dropped.DataState = radio.DataStateDisconnected
		dropped.SignalStrength = nil

		device := &fakeDevice{snapshots: []*radio.Snapshot{lteSnapshot(), handover, dropped}}
		collectors := metrics.New()

		s, err := newService(context.Background(), serviceOptions{
			device:       device,
			metrics:      collectors,
			pollInterval: time.Minute,
		})
		require.NoError(t, err)

		ctx := context.Background()

		s.EnableStabilityMode(ctx)
		synctest.Wait()

		time.Sleep(2 * time.Minute)
		synctest.Wait()

		summary := s.StabilityMetrics(ctx)
		require.Equal(t, uint64(2), summary.UptimeMinutes)
		require.Equal(t, uint64(1), summary.HandoverCount)
		require.Equal(t, uint64(1), summary.SignalDropCount)
		require.Equal(t, uint64(0), summary.ReconnectionCount)
		require.NotNil(t, summary.AvgSignalQuality)
		require.InDelta(t, (signalQuality(-97)+100)/2, *summary.AvgSignalQuality, 1e-9)
		require.Equal(t, 90, summary.StabilityScore)

		s.DisableStabilityMode(ctx)
		require.Equal(t, stability.Summary{}, s.StabilityMetrics(ctx))
		require.Nil(t, s.watcher)
	})
}

// TestService_RecordEvent verifies external events only count while stability mode is active.
func TestService_RecordEvent(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		device := &fakeDevice{snapshots: []*radio.Snapshot{{DataState: radio.DataStateConnected}}}
		collectors := metrics.New()
		s, err := newService(context.Background(), serviceOptions{device: device, metrics: collectors})
		require.NoError(t, err)

		ctx := context.Background()

		require.NoError(t, s.RecordEvent(ctx, stability.EventHandover, 0))
		require.Equal(t, uint64(0), s.tracker.Session().HandoverCount)

		s.EnableStabilityMode(ctx)
		defer s.Close()

		require.NoError(t, s.RecordEvent(ctx, stability.EventReconnection, 0))
		require.NoError(t, s.RecordEvent(ctx, stability.EventSignalQuality, 42.5))
		require.ErrorIs(t, s.RecordEvent(ctx, "teleport", 0), stability.ErrUnknownEvent)

		session := s.tracker.Session()
		require.Equal(t, uint64(1), session.ReconnectionCount)
		require.Equal(t, uint64(1), session.SignalQualitySampleCount)

		s.DisableStabilityMode(ctx)
		require.NoError(t, s.RecordEvent(ctx, stability.EventReconnection, 0))

		// Only events the tracker counted reach the event counter.
		const expected = `
# HELP radio_bridge_stability_events_total Network events recorded while stability mode is active.
# TYPE radio_bridge_stability_events_total counter
radio_bridge_stability_events_total{event="reconnection"} 1
radio_bridge_stability_events_total{event="signalQuality"} 1
`
		require.NoError(t, testutil.GatherAndCompare(collectors.Gatherer(),
			strings.NewReader(expected), "radio_bridge_stability_events_total"))
	})
}
