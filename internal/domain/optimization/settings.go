package optimization

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Setting names a network optimization toggle.
type Setting string

// Known optimization toggles.
const (
	Force4G                Setting = "force4G"
	PreferHighBand         Setting = "preferHighBand"
	AggressiveHandover     Setting = "aggressiveHandover"
	LowLatencyMode         Setting = "lowLatencyMode"
	BackgroundOptimization Setting = "backgroundOptimization"
)

// ErrUnknownSetting is returned for names outside the known toggles.
var ErrUnknownSetting = errors.New("unknown optimization setting")

// All returns every known setting in a stable order.
func All() []Setting {
	return []Setting{
		Force4G,
		PreferHighBand,
		AggressiveHandover,
		LowLatencyMode,
		BackgroundOptimization,
	}
}

// Parse validates a setting name.
func Parse(name string) (Setting, error) {
	setting := Setting(name)
	if !slices.Contains(All(), setting) {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownSetting)
	}

	return setting, nil
}

// Settings is the on/off state of every toggle.
type Settings map[Setting]bool

// Defaults returns settings with every toggle off.
func Defaults() Settings {
	s := make(Settings, len(All()))
	for _, setting := range All() {
		s[setting] = false
	}

	return s
}

// Uniform returns settings with every toggle set to value.
func Uniform(value bool) Settings {
	s := Defaults()
	for setting := range s {
		s[setting] = value
	}

	return s
}

// Clone returns a copy of the settings.
func (s Settings) Clone() Settings {
	return maps.Clone(s)
}

// Normalize drops unknown keys and fills missing toggles with false.
func (s Settings) Normalize() Settings {
	out := Defaults()
	for setting := range out {
		out[setting] = s[setting]
	}

	return out
}

// Fields renders the settings as a flat map keyed by setting name.
func (s Settings) Fields() map[string]any {
	fields := make(map[string]any, len(s))
	for setting, enabled := range s {
		fields[string(setting)] = enabled
	}

	return fields
}
