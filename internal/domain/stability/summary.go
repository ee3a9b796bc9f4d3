package stability

import "strconv"

// NotAvailable is reported in place of the average signal quality when no samples exist.
const NotAvailable = "N/A"

// Summary is a read-only view of a session computed at query time.
type Summary struct {
	// UptimeMinutes is the whole number of minutes since Enable.
	UptimeMinutes uint64
	// HandoverCount is the number of handovers.
	HandoverCount uint64
	// SignalDropCount is the number of signal drops.
	SignalDropCount uint64
	// ReconnectionCount is the number of data reconnections.
	ReconnectionCount uint64
	// AvgSignalQuality is the mean signal quality, nil without samples.
	AvgSignalQuality *float64
	// StabilityScore is the health score in [0, 100].
	StabilityScore int
}

// AvgSignalQualityText renders the average with one decimal, or NotAvailable.
func (s Summary) AvgSignalQualityText() string {
	if s.AvgSignalQuality == nil {
		return NotAvailable
	}

	return strconv.FormatFloat(*s.AvgSignalQuality, 'f', 1, 64)
}

// Fields renders the summary as the flat map sent across the call boundary.
func (s Summary) Fields() map[string]any {
	return map[string]any{
		"uptime":            s.UptimeMinutes,
		"handoverCount":     s.HandoverCount,
		"signalDrops":       s.SignalDropCount,
		"dataReconnections": s.ReconnectionCount,
		"avgSignalQuality":  s.AvgSignalQualityText(),
		"stabilityScore":    s.StabilityScore,
	}
}
