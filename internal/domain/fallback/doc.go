// Package fallback runs an ordered list of alternative actions until one works.
//
// Execute separates what to try (a list of named candidates) from how an
// attempt is performed (an injected function). Candidates are tried strictly
// in order, each exactly once, and the first success ends the run. When every
// candidate fails the caller gets an *ExhaustedError with the full trail.
package fallback
