package stability

import (
	"math"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	// current is the time returned by now.
	current time.Time
}

// now returns the current fake time.
func (c *fakeClock) now() time.Time { return c.current }

// advance moves the clock forward.
func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

// newFakeClock returns a clock fixed at an arbitrary instant.
func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

// TestSummarize_Inactive verifies never-enabled and disabled trackers report defaults.
func TestSummarize_Inactive(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	require.Equal(t, Summary{}, tracker.Summarize())

	tracker.Enable()
	tracker.RecordHandover()
	tracker.RecordSignalQuality(70)
	tracker.Disable()

	summary := tracker.Summarize()
	require.Equal(t, Summary{}, summary)
	require.Equal(t, NotAvailable, summary.AvgSignalQualityText())
	require.Equal(t, 0, summary.StabilityScore)

	// Counters survive Disable even though they are not reported.
	require.Equal(t, uint64(1), tracker.Session().HandoverCount)
}

// TestSummarize_ShortUptimeIsOptimistic ensures the score is 100 below one minute regardless of events.
func TestSummarize_ShortUptimeIsOptimistic(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewTracker(WithClock(clock.now))
	tracker.Enable()

	for range 50 {
		tracker.RecordSignalDrop()
		tracker.RecordReconnection()
		tracker.RecordHandover()
	}

	clock.advance(59 * time.Second)

	summary := tracker.Summarize()
	require.Equal(t, uint64(0), summary.UptimeMinutes)
	require.Equal(t, MaxScore, summary.StabilityScore)
	require.Equal(t, uint64(50), summary.SignalDropCount)
}

// TestSummarize_ReferenceScenario reproduces the documented 40 minute scenario using a fake clock bubble.
func TestSummarize_ReferenceScenario(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		tracker := NewTracker()
		tracker.Enable()

		for range 100 {
			tracker.RecordHandover()
		}

		tracker.RecordSignalDrop()
		tracker.RecordSignalDrop()
		tracker.RecordReconnection()

		time.Sleep(40 * time.Minute)

		summary := tracker.Summarize()
		require.Equal(t, uint64(40), summary.UptimeMinutes)
		require.Equal(t, uint64(100), summary.HandoverCount)
		require.Equal(t, 57, summary.StabilityScore)
	})
}

// TestSummarize_AverageSignalQuality covers the average and its one-decimal rendering.
func TestSummarize_AverageSignalQuality(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Enable()

	require.Nil(t, tracker.Summarize().AvgSignalQuality)
	require.Equal(t, NotAvailable, tracker.Summarize().AvgSignalQualityText())

	tracker.RecordSignalQuality(60)
	tracker.RecordSignalQuality(65)
	tracker.RecordSignalQuality(66)

	summary := tracker.Summarize()
	require.NotNil(t, summary.AvgSignalQuality)
	require.InDelta(t, 63.666, *summary.AvgSignalQuality, 0.001)
	require.Equal(t, "63.7", summary.AvgSignalQualityText())
}

// TestEnable_ResetIsTotal verifies events recorded while inactive and prior sessions never leak.
func TestEnable_ResetIsTotal(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	tracker := NewTracker(WithClock(clock.now))

	// Inactive: dropped.
	tracker.RecordSignalQuality(5)
	tracker.RecordHandover()

	tracker.Enable()
	tracker.RecordSignalQuality(90)
	tracker.RecordSignalDrop()
	clock.advance(10 * time.Minute)

	tracker.Disable()
	tracker.RecordSignalQuality(1)

	// Re-enable while already active also restarts.
	tracker.Enable()
	tracker.RecordSignalQuality(40)
	tracker.Enable()
	tracker.RecordSignalQuality(80)

	summary := tracker.Summarize()
	require.Equal(t, uint64(0), summary.UptimeMinutes)
	require.Equal(t, uint64(0), summary.SignalDropCount)
	require.Equal(t, uint64(0), summary.HandoverCount)
	require.Equal(t, "80.0", summary.AvgSignalQualityText())
	require.Equal(t, clock.current, tracker.Session().StartTime)
}

// TestScore covers penalties, the handover tolerance and clamping.
func TestScore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                                 string
		uptime, handovers, drops, reconnects uint64
		want                                 int
	}{
		{name: "no data", uptime: 0, handovers: 500, drops: 500, reconnects: 500, want: 100},
		{name: "clean session", uptime: 30, want: 100},
		{name: "handovers within tolerance", uptime: 10, handovers: 20, want: 100},
		{name: "reference", uptime: 40, handovers: 100, drops: 2, reconnects: 1, want: 57},
		{name: "single drop", uptime: 5, drops: 1, want: 90},
		{name: "fractional penalty rounds down", uptime: 4, handovers: 9, want: 96},
		{name: "extreme drops clamp to zero", uptime: 60, drops: 10000, want: 0},
		{name: "short uptime heavy churn", uptime: 1, handovers: 1000, want: 0},
		{name: "max counters", uptime: 1, handovers: math.MaxUint64, drops: math.MaxUint64, reconnects: math.MaxUint64, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Score(tc.uptime, tc.handovers, tc.drops, tc.reconnects)
			require.Equal(t, tc.want, got)
			require.GreaterOrEqual(t, got, 0)
			require.LessOrEqual(t, got, MaxScore)
		})
	}
}

// TestRecord dispatches by kind and rejects unknown kinds and bad samples.
func TestRecord(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Enable()

	for _, kind := range []EventKind{EventHandover, EventSignalDrop, EventReconnection} {
		counted, err := tracker.Record(kind, 0)
		require.NoError(t, err)
		require.True(t, counted)
	}

	counted, err := tracker.Record(EventSignalQuality, 42.5)
	require.NoError(t, err)
	require.True(t, counted)

	_, err = tracker.Record("teleport", 0)
	require.ErrorIs(t, err, ErrUnknownEvent)

	_, err = tracker.Record(EventSignalQuality, math.NaN())
	require.ErrorIs(t, err, ErrInvalidSample)

	_, err = tracker.Record(EventSignalQuality, math.Inf(1))
	require.ErrorIs(t, err, ErrInvalidSample)

	session := tracker.Session()
	require.Equal(t, uint64(1), session.HandoverCount)
	require.Equal(t, uint64(1), session.SignalDropCount)
	require.Equal(t, uint64(1), session.ReconnectionCount)
	require.Equal(t, uint64(1), session.SignalQualitySampleCount)
}

// TestRecord_Inactive reports events outside a session as not counted.
func TestRecord_Inactive(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()

	counted, err := tracker.Record(EventHandover, 0)
	require.NoError(t, err)
	require.False(t, counted)

	tracker.Enable()
	tracker.Disable()

	counted, err = tracker.Record(EventSignalQuality, 80)
	require.NoError(t, err)
	require.False(t, counted)
	require.Zero(t, tracker.Session().SignalQualitySampleCount)
}

// TestTracker_ConcurrentRecords ensures concurrent events are all counted.
func TestTracker_ConcurrentRecords(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Enable()

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			for range 250 {
				tracker.RecordHandover()
				tracker.RecordSignalQuality(1)
				_ = tracker.Summarize()
			}
		})
	}

	wg.Wait()

	session := tracker.Session()
	require.Equal(t, uint64(2000), session.HandoverCount)
	require.Equal(t, uint64(2000), session.SignalQualitySampleCount)
	require.InDelta(t, 2000.0, session.SignalQualitySum, 0.0001)
}

// TestSummaryFields verifies the boundary keys and value formats.
func TestSummaryFields(t *testing.T) {
	t.Parallel()

	avg := 71.26
	summary := Summary{
		UptimeMinutes:     12,
		HandoverCount:     3,
		SignalDropCount:   1,
		ReconnectionCount: 2,
		AvgSignalQuality:  &avg,
		StabilityScore:    60,
	}

	fields := summary.Fields()
	require.Equal(t, uint64(12), fields["uptime"])
	require.Equal(t, uint64(3), fields["handoverCount"])
	require.Equal(t, uint64(1), fields["signalDrops"])
	require.Equal(t, uint64(2), fields["dataReconnections"])
	require.Equal(t, "71.3", fields["avgSignalQuality"])
	require.Equal(t, 60, fields["stabilityScore"])

	require.Equal(t, NotAvailable, Summary{}.Fields()["avgSignalQuality"])
	require.Equal(t, 0, Summary{}.Fields()["stabilityScore"])
}
