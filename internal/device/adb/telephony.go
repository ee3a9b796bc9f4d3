package adb

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/oshokin/radio-bridge/internal/domain/radio"
)

// System properties read from getprop.
const (
	propOperatorAlpha   = "gsm.operator.alpha"
	propOperatorNumeric = "gsm.operator.numeric"
	propOperatorRoaming = "gsm.operator.isroaming"
)

// Android reports Integer.MAX_VALUE for unavailable signal values.
const unavailableSignal = math.MaxInt32

//nolint:gochecknoglobals // Compiled once, read-only.
var (
	propLine          = regexp.MustCompile(`^\[([^\]]+)\]:\s*\[(.*)\]$`)
	networkTypeField  = regexp.MustCompile(`\bm(?:DataConnectionNetworkType|DataNetworkType)=(\d+)`)
	dataStateField    = regexp.MustCompile(`\bmDataConnectionState=(-?\d+)`)
	dataActivityField = regexp.MustCompile(`\bmDataActivity=(-?\d+)`)
	cellIDField       = regexp.MustCompile(`\bm(?:Ci|Cid|Nci)=(\d+)`)
	areaCodeField     = regexp.MustCompile(`\bm(?:Tac|Lac)=(\d+)`)
	signalField       = regexp.MustCompile(`\b(?:ssRsrp|rsrp|mDbm)=(-?\d+)`)
)

// Snapshot reads the current telephony state of the handset.
func (c *Client) Snapshot(ctx context.Context) (*radio.Snapshot, error) {
	props, err := c.Shell(ctx, "getprop")
	if err != nil {
		return nil, fmt.Errorf("read properties: %w", err)
	}

	registry, err := c.Shell(ctx, "dumpsys", "telephony.registry")
	if err != nil {
		return nil, fmt.Errorf("read telephony registry: %w", err)
	}

	snapshot := parseRegistry(registry)
	applyProperties(snapshot, parseProperties(props))

	return snapshot, nil
}

// parseProperties parses "[key]: [value]" lines printed by getprop.
func parseProperties(out string) map[string]string {
	props := make(map[string]string)

	for line := range strings.Lines(out) {
		match := propLine.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) < 3 {
			continue
		}

		props[match[1]] = match[2]
	}

	return props
}

// applyProperties fills the operator fields of s.
// Dual-SIM handsets report comma separated values; the first slot wins.
func applyProperties(s *radio.Snapshot, props map[string]string) {
	s.OperatorName = firstValue(props[propOperatorAlpha])
	s.MCC, s.MNC = radio.SplitOperator(firstValue(props[propOperatorNumeric]))
	s.IsRoaming = firstValue(props[propOperatorRoaming]) == "true"
}

// parseRegistry extracts data and cell state from "dumpsys telephony.registry".
// Only the first occurrence of every field is used, which is the default subscription.
func parseRegistry(out string) *radio.Snapshot {
	s := &radio.Snapshot{
		DataState:    radio.DataStateUnknown,
		DataActivity: radio.DataActivityUnknown,
	}

	if v, ok := intField(networkTypeField, out); ok {
		s.NetworkType = radio.Code(v)
	}

	if v, ok := intField(dataStateField, out); ok {
		s.DataState = radio.DataState(v)
	}

	if v, ok := intField(dataActivityField, out); ok {
		s.DataActivity = radio.DataActivity(v)
	}

	s.CellID = availableField(cellIDField, out)
	s.AreaCode = availableField(areaCodeField, out)

	for _, match := range signalField.FindAllStringSubmatch(out, -1) {
		dbm, err := strconv.Atoi(match[1])
		if err != nil || dbm == unavailableSignal || dbm >= 0 {
			continue
		}

		s.SignalStrength = &dbm

		break
	}

	return s
}

// intField returns the first integer captured by re in out.
func intField(re *regexp.Regexp, out string) (int, bool) {
	match := re.FindStringSubmatch(out)
	if len(match) < 2 {
		return 0, false
	}

	v, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}

	return v, true
}

// availableField returns the first captured value of re that is not the unavailable marker.
func availableField(re *regexp.Regexp, out string) string {
	unavailable := strconv.Itoa(unavailableSignal)

	for _, match := range re.FindAllStringSubmatch(out, -1) {
		if match[1] != unavailable {
			return match[1]
		}
	}

	return ""
}

// firstValue returns the first comma separated element of v.
func firstValue(v string) string {
	first, _, _ := strings.Cut(v, ",")

	return strings.TrimSpace(first)
}
