package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the radio-bridge binaries.
type Config struct {
	// ServerAddress is the gRPC address of the method channel service.
	ServerAddress string `yaml:"server_addr"`
	// MetricsAddress is the optional HTTP address serving Prometheus metrics.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// OptimizationFile is the path to the JSON file storing optimization toggles.
	OptimizationFile string `yaml:"optimization_file"`
	// Timeout is the duration for RPC calls and single device commands.
	Timeout time.Duration `yaml:"timeout"`
	// Device describes how to reach the handset.
	Device Device `yaml:"device"`
	// PollInterval is how often the handset is sampled while stability mode is on.
	PollInterval time.Duration `yaml:"poll_interval"`
	// TestingMenu lists the routes tried, in order, to open the radio testing screen.
	TestingMenu []LaunchTarget `yaml:"testing_menu"`
}

// Device holds the adb connection parameters.
type Device struct {
	// AdbPath is the adb executable; looked up in PATH when not absolute.
	AdbPath string `yaml:"adb_path"`
	// Serial selects the handset when several are attached; empty means the only one.
	Serial string `yaml:"serial,omitempty"`
}

// LaunchTarget describes one activity launch route.
type LaunchTarget struct {
	// Name identifies the route in logs and error messages.
	Name string `yaml:"name"`
	// Action is the intent action, e.g. android.intent.action.MAIN.
	Action string `yaml:"action,omitempty"`
	// Component is the package/class pair, e.g. com.android.settings/.RadioInfo.
	Component string `yaml:"component,omitempty"`
	// Data is the intent data URI, e.g. tel:*#*#4636#*#*.
	Data string `yaml:"data,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "radio-bridge-settings.yaml"

	// DefaultOptimizationFilename is the default filename for optimization toggles.
	DefaultOptimizationFilename = "radio-bridge-optimizations.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the default handset sampling interval.
	DefaultPollInterval = 5 * time.Second

	// DefaultAdbPath is the adb executable used when none is configured.
	DefaultAdbPath = "adb"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errLaunchTargetInvalid is returned for a testing menu route without a name or target.
	errLaunchTargetInvalid = errors.New("invalid testing menu route")
)

// DefaultTestingMenu returns the built-in routes to the radio testing screen,
// from the most standard to the last resort.
func DefaultTestingMenu() []LaunchTarget {
	return []LaunchTarget{
		{
			Name:      "radio-info-settings",
			Component: "com.android.settings/.RadioInfo",
		},
		{
			Name:      "radio-info-phone",
			Action:    "android.intent.action.MAIN",
			Component: "com.android.phone/.settings.RadioInfo",
		},
		{
			Name:      "samsung-telephony-ui",
			Component: "com.samsung.android.app.telephonyui/.netsettings.ui.NetSettingsActivity",
		},
		{
			Name:      "testing-settings",
			Action:    "android.intent.action.MAIN",
			Component: "com.android.settings/.TestingSettings",
		},
		{
			Name:   "dialer-secret-code",
			Action: "android.intent.action.CALL",
			Data:   "tel:*#*#4636#*#*",
		},
		{
			Name:   "device-info-settings",
			Action: "android.settings.DEVICE_INFO_SETTINGS",
		},
	}
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.OptimizationFile == "" {
		settings.OptimizationFile = DefaultOptimizationFilename
	}

	if settings.Device.AdbPath == "" {
		settings.Device.AdbPath = DefaultAdbPath
	}

	if len(settings.TestingMenu) == 0 {
		settings.TestingMenu = DefaultTestingMenu()
	}

	return validateTestingMenu(settings.TestingMenu)
}

// validateTestingMenu requires unique names and a launch target on every route.
func validateTestingMenu(targets []LaunchTarget) error {
	seen := make(map[string]struct{}, len(targets))

	for i, target := range targets {
		if target.Name == "" {
			return fmt.Errorf("route #%d has no name: %w", i+1, errLaunchTargetInvalid)
		}

		if _, ok := seen[target.Name]; ok {
			return fmt.Errorf("route %q is listed twice: %w", target.Name, errLaunchTargetInvalid)
		}

		seen[target.Name] = struct{}{}

		if target.Action == "" && target.Component == "" {
			return fmt.Errorf("route %q needs an action or a component: %w", target.Name, errLaunchTargetInvalid)
		}
	}

	return nil
}
