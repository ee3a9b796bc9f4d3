// Package common holds helpers shared by the radio-bridge binaries.
//
// It provides a method channel client with per-call timeouts and typed helpers,
// and detects the current system actor (hostname/username) so the daemon can
// log who issued a call.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
