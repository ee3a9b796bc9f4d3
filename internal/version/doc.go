// Package version holds the radio-bridge build metadata.
//
// Version, Commit and BuildTime are set through ldflags. Short and Full render them
// for the version subcommand of both binaries, UserAgent for the gRPC client.
package version
