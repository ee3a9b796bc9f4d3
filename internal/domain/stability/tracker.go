package stability

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Score tuning. Kept as-is for compatibility with existing clients.
const (
	// MaxScore is the best possible stability score.
	MaxScore = 100
	// signalDropPenalty is subtracted for every signal drop.
	signalDropPenalty = 10.0
	// reconnectionPenalty is subtracted for every data reconnection.
	reconnectionPenalty = 15.0
	// handoverRateTolerance is the handovers-per-minute rate considered normal roaming.
	handoverRateTolerance = 2.0
	// handoverRatePenalty is subtracted per handover/minute above the tolerance.
	handoverRatePenalty = 15.0
)

// EventKind names a stability event reported by the platform.
type EventKind string

// Supported event kinds.
const (
	EventHandover      EventKind = "handover"
	EventSignalDrop    EventKind = "signalDrop"
	EventReconnection  EventKind = "reconnection"
	EventSignalQuality EventKind = "signalQuality"
)

var (
	// ErrUnknownEvent is returned by Record for an unsupported event kind.
	ErrUnknownEvent = errors.New("unknown stability event")
	// ErrInvalidSample is returned by Record for a non-finite signal quality value.
	ErrInvalidSample = errors.New("invalid signal quality sample")
)

// Session is the state accumulated between Enable and Disable.
type Session struct {
	// StartTime is when the session was enabled.
	StartTime time.Time
	// HandoverCount is the number of cell or technology handovers.
	HandoverCount uint64
	// SignalDropCount is the number of signal losses.
	SignalDropCount uint64
	// ReconnectionCount is the number of data reconnections.
	ReconnectionCount uint64
	// SignalQualitySum is the sum of all signal quality samples.
	SignalQualitySum float64
	// SignalQualitySampleCount is the number of signal quality samples.
	SignalQualitySampleCount uint64
	// Active reports whether monitoring is enabled.
	Active bool
}

// Tracker guards a single Session. It is safe for concurrent use.
type Tracker struct {
	// now returns the current time; replaced in tests.
	now func() time.Time
	// session is the current monitoring session.
	session Session
	// mu serialises every mutation and summary.
	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for uptime.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker returns an inactive tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Enable starts a new session, discarding anything accumulated before.
func (t *Tracker) Enable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session = Session{
		StartTime: t.now(),
		Active:    true,
	}
}

// Disable ends the session. Counters are kept but no longer reported.
func (t *Tracker) Disable() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.session.Active = false
}

// Active reports whether a session is running.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.session.Active
}

// Session returns a copy of the current session.
func (t *Tracker) Session() Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.session
}

// RecordHandover counts one handover.
func (t *Tracker) RecordHandover() {
	t.update(func(s *Session) { s.HandoverCount++ })
}

// RecordSignalDrop counts one signal drop.
func (t *Tracker) RecordSignalDrop() {
	t.update(func(s *Session) { s.SignalDropCount++ })
}

// RecordReconnection counts one data reconnection.
func (t *Tracker) RecordReconnection() {
	t.update(func(s *Session) { s.ReconnectionCount++ })
}

// RecordSignalQuality adds one signal quality sample.
func (t *Tracker) RecordSignalQuality(value float64) {
	t.update(func(s *Session) {
		s.SignalQualitySum += value
		s.SignalQualitySampleCount++
	})
}

// Record dispatches an event by kind. value is only used for EventSignalQuality.
// It reports whether the event was counted, which is false outside an active session.
func (t *Tracker) Record(kind EventKind, value float64) (bool, error) {
	var apply func(*Session)

	switch kind {
	case EventHandover:
		apply = func(s *Session) { s.HandoverCount++ }
	case EventSignalDrop:
		apply = func(s *Session) { s.SignalDropCount++ }
	case EventReconnection:
		apply = func(s *Session) { s.ReconnectionCount++ }
	case EventSignalQuality:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false, fmt.Errorf("signal quality %v: %w", value, ErrInvalidSample)
		}

		apply = func(s *Session) {
			s.SignalQualitySum += value
			s.SignalQualitySampleCount++
		}
	default:
		return false, fmt.Errorf("%q: %w", kind, ErrUnknownEvent)
	}

	return t.update(apply), nil
}

// update applies fn to the session when it is active and reports whether it did.
func (t *Tracker) update(fn func(*Session)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.Active {
		return false
	}

	fn(&t.session)

	return true
}

// Summarize returns the current summary. An inactive tracker reports zeros.
func (t *Tracker) Summarize() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.session.Active {
		return Summary{}
	}

	s := t.session

	elapsed := t.now().Sub(s.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}

	summary := Summary{
		UptimeMinutes:     uint64(elapsed / time.Minute),
		HandoverCount:     s.HandoverCount,
		SignalDropCount:   s.SignalDropCount,
		ReconnectionCount: s.ReconnectionCount,
	}

	if s.SignalQualitySampleCount > 0 {
		avg := s.SignalQualitySum / float64(s.SignalQualitySampleCount)
		summary.AvgSignalQuality = &avg
	}

	summary.StabilityScore = Score(
		summary.UptimeMinutes,
		summary.HandoverCount,
		summary.SignalDropCount,
		summary.ReconnectionCount,
	)

	return summary
}

// Score computes the stability score for the given session figures.
// Under one minute of uptime there is not enough data and the score is MaxScore.
func Score(uptimeMinutes, handovers, signalDrops, reconnections uint64) int {
	if uptimeMinutes < 1 {
		return MaxScore
	}

	score := float64(MaxScore)
	score -= float64(signalDrops) * signalDropPenalty

	handoverRate := float64(handovers) / float64(uptimeMinutes)
	if handoverRate > handoverRateTolerance {
		score -= (handoverRate - handoverRateTolerance) * handoverRatePenalty
	}

	score -= float64(reconnections) * reconnectionPenalty

	score = math.Floor(score)

	switch {
	case score <= 0:
		return 0
	case score >= MaxScore:
		return MaxScore
	default:
		return int(score)
	}
}
