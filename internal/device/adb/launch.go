package adb

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Intent describes an activity to start with "am start".
type Intent struct {
	// Action is the intent action, optional when Component is set.
	Action string
	// Component is the explicit package/class, e.g. com.android.settings/.RadioInfo.
	Component string
	// Data is the intent data URI.
	Data string
}

// errEmptyIntent is returned for an intent without action and component.
var errEmptyIntent = errors.New("intent needs an action or a component")

// String renders the intent for logs.
func (i Intent) String() string {
	parts := make([]string, 0, 3)

	if i.Action != "" {
		parts = append(parts, "action="+i.Action)
	}

	if i.Component != "" {
		parts = append(parts, "component="+i.Component)
	}

	if i.Data != "" {
		parts = append(parts, "data="+i.Data)
	}

	return strings.Join(parts, " ")
}

// args builds the remote "am start" command line.
// Values are single-quoted because adb joins them into one remote shell string.
func (i Intent) args() []string {
	args := []string{"am", "start", "-W"}

	if i.Action != "" {
		args = append(args, "-a", shellQuote(i.Action))
	}

	if i.Data != "" {
		args = append(args, "-d", shellQuote(i.Data))
	}

	if i.Component != "" {
		args = append(args, "-n", shellQuote(i.Component))
	}

	return args
}

// Launch starts the activity described by intent.
// "am start" exits 0 even when nothing was started, so its output is inspected.
func (c *Client) Launch(ctx context.Context, intent Intent) error {
	if intent.Action == "" && intent.Component == "" {
		return errEmptyIntent
	}

	out, err := c.Shell(ctx, intent.args()...)
	if err != nil {
		return err
	}

	return classifyLaunchOutput(out)
}

// classifyLaunchOutput maps "am start" output to nil, ErrActivityNotFound or ErrLaunchFailed.
// A missing route is reported together with a generic "Error type" line, so it is checked first.
func classifyLaunchOutput(out string) error {
	var failure string

	for line := range strings.Lines(out) {
		line = strings.TrimSpace(line)

		switch {
		case strings.Contains(line, "does not exist"),
			strings.Contains(line, "unable to resolve Intent"),
			strings.Contains(line, "ActivityNotFoundException"):
			return fmt.Errorf("%s: %w", line, ErrActivityNotFound)
		case failure == "" && (strings.HasPrefix(line, "Error") || strings.Contains(line, "Exception")):
			failure = line
		}
	}

	if failure != "" {
		return fmt.Errorf("%s: %w", failure, ErrLaunchFailed)
	}

	return nil
}

// shellQuote wraps s in single quotes for the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
