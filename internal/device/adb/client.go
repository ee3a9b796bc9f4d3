package adb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/radio-bridge/internal/logger"
)

var (
	// ErrDevice is returned when adb itself fails: no handset, offline, unauthorized, timeouts.
	ErrDevice = errors.New("device unavailable")
	// ErrActivityNotFound is returned when the handset has no activity for an intent.
	ErrActivityNotFound = errors.New("activity not found on device")
	// ErrLaunchFailed is returned when the activity exists but could not be started.
	ErrLaunchFailed = errors.New("activity launch failed")
)

// defaultCommandTimeout bounds a single adb invocation when no timeout is configured.
const defaultCommandTimeout = 5 * time.Second

// Runner executes a program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs real processes.
type execRunner struct{}

// Run executes name with args and returns stdout and stderr combined.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Client runs adb commands against one handset.
type Client struct {
	// adbPath is the adb executable.
	adbPath string
	// serial selects the handset; empty means the only attached one.
	serial string
	// timeout bounds every adb invocation.
	timeout time.Duration
	// runner executes adb; replaced in tests.
	runner Runner
	// processes lists running processes; replaced in tests.
	processes func() ([]ps.Process, error)
}

// Option configures a Client.
type Option func(*Client)

// WithSerial targets the handset with the given serial number.
func WithSerial(serial string) Option {
	return func(c *Client) {
		c.serial = serial
	}
}

// WithTimeout bounds every adb invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(runner Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// WithProcessLister replaces the process listing used by EnsureServer.
func WithProcessLister(processes func() ([]ps.Process, error)) Option {
	return func(c *Client) {
		if processes != nil {
			c.processes = processes
		}
	}
}

// NewClient creates a client using the adb executable at adbPath.
func NewClient(adbPath string, opts ...Option) *Client {
	c := &Client{
		adbPath:   adbPath,
		timeout:   defaultCommandTimeout,
		runner:    execRunner{},
		processes: ps.Processes,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Serial returns the targeted handset serial, possibly empty.
func (c *Client) Serial() string {
	return c.serial
}

// EnsureServer starts the adb server unless one is already running.
func (c *Client) EnsureServer(ctx context.Context) error {
	running, err := c.serverRunning()
	if err != nil {
		logger.WarnKV(ctx, "Unable to list processes, starting adb server anyway", "error", err)
	}

	if running {
		logger.Debug(ctx, "adb server already running")

		return nil
	}

	logger.InfoKV(ctx, "Starting adb server", "adb_path", c.adbPath)

	if _, err = c.run(ctx, "start-server"); err != nil {
		return fmt.Errorf("start adb server: %w", err)
	}

	return nil
}

// serverRunning reports whether an adb process exists on this host.
func (c *Client) serverRunning() (bool, error) {
	processList, err := c.processes()
	if err != nil {
		return false, err
	}

	name := adbExecutableName(c.adbPath)

	for _, process := range processList {
		if process.Executable() == name {
			return true, nil
		}
	}

	return false, nil
}

// Shell runs a command on the handset shell and returns its output.
func (c *Client) Shell(ctx context.Context, command ...string) (string, error) {
	out, err := c.run(ctx, append([]string{"shell"}, command...)...)
	if err != nil {
		return "", err
	}

	return out, nil
}

// run executes adb with the serial prefix and the configured timeout.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	label := strings.Join(args, " ")

	if c.serial != "" {
		args = append([]string{"-s", c.serial}, args...)
	}

	out, err := c.runner.Run(callCtx, c.adbPath, args...)
	output := strings.TrimSpace(string(out))

	if err != nil {
		if output == "" {
			return "", fmt.Errorf("adb %s: %w: %w", label, ErrDevice, err)
		}

		return "", fmt.Errorf("adb %s: %s: %w", label, firstLine(output), ErrDevice)
	}

	return output, nil
}

// adbExecutableName returns the process name adb runs under on this platform.
func adbExecutableName(adbPath string) string {
	name := filepath.Base(adbPath)
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}

	return name
}

// firstLine returns the first non-empty line of s.
func firstLine(s string) string {
	for line := range strings.Lines(s) {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}

	return ""
}
