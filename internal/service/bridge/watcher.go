package bridge

import (
	"context"
	"time"

	"github.com/oshokin/radio-bridge/internal/domain/radio"
	"github.com/oshokin/radio-bridge/internal/domain/stability"
	"github.com/oshokin/radio-bridge/internal/logger"
)

// RSRP range mapped onto the 0..100 signal quality scale.
const (
	minSignalDBm = -140
	maxSignalDBm = -44
)

// event is a stability event derived from two consecutive snapshots.
type event struct {
	// kind is the tracker event.
	kind stability.EventKind
	// value is the signal quality sample, zero for counters.
	value float64
}

// snapshotReader is the part of Device the watcher needs.
type snapshotReader interface {
	Snapshot(ctx context.Context) (*radio.Snapshot, error)
}

// watcher polls the handset until stopped.
type watcher struct {
	// cancel stops the polling loop.
	cancel context.CancelFunc
	// done is closed when the loop has returned.
	done chan struct{}
}

// startWatcher polls reader every interval and hands derived events to sink.
// The loop outlives the request that started it and keeps only its logger.
func startWatcher(
	ctx context.Context,
	reader snapshotReader,
	interval time.Duration,
	sink func(context.Context, event),
) *watcher {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ctx = logger.WithName(ctx, "watcher")

	w := &watcher{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)

		poll(ctx, reader, interval, sink)
	}()

	return w
}

// stop cancels the loop and waits for it to return.
func (w *watcher) stop() {
	w.cancel()
	<-w.done
}

// poll runs the watcher loop until ctx is canceled.
func poll(ctx context.Context, reader snapshotReader, interval time.Duration, sink func(context.Context, event)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var previous *radio.Snapshot

	for {
		current, err := reader.Snapshot(ctx)

		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			logger.WarnKV(ctx, "Unable to read telephony state", "error", err)
		default:
			for _, e := range detectEvents(previous, current) {
				sink(ctx, e)
			}

			previous = current
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// detectEvents compares two snapshots. previous is nil on the first poll.
func detectEvents(previous, current *radio.Snapshot) []event {
	var events []event

	if previous != nil {
		if handedOver(previous, current) {
			events = append(events, event{kind: stability.EventHandover})
		}

		switch {
		case previous.Connected() && !current.Connected():
			events = append(events, event{kind: stability.EventSignalDrop})
		case !previous.Connected() && current.Connected():
			events = append(events, event{kind: stability.EventReconnection})
		}
	}

	if current.SignalStrength != nil {
		events = append(events, event{
			kind:  stability.EventSignalQuality,
			value: signalQuality(*current.SignalStrength),
		})
	}

	return events
}

// handedOver reports a serving cell change or a technology family change.
func handedOver(previous, current *radio.Snapshot) bool {
	if previous.CellID != "" && current.CellID != "" && previous.CellID != current.CellID {
		return true
	}

	before := radio.Classify(previous.NetworkType).Family
	after := radio.Classify(current.NetworkType).Family

	return before != radio.FamilyUnknown && after != radio.FamilyUnknown && before != after
}

// signalQuality maps dBm onto 0..100.
func signalQuality(dbm int) float64 {
	score := float64(dbm-minSignalDBm) / float64(maxSignalDBm-minSignalDBm) * 100

	return min(max(score, 0), 100)
}
