package version

import "fmt"

// Project is the product name used in version output and user agents.
const Project = "radio-bridge"

var (
	// Version is the semantic version of the build. It can be overridden via ldflags.
	Version = "0.3.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("%s %s, commit: %s, built at: %s", Project, Version, Commit, BuildTime)
}

// UserAgent identifies a binary of the project, e.g. "radio-bridgectl/0.3.0".
func UserAgent(binary string) string {
	return binary + "/" + Version
}
