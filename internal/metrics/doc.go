// Package metrics exposes Prometheus counters for the bridge:
// fallback attempts per candidate, stability events per kind and the last stability score.
//
// A nil *Metrics is valid and records nothing.
package metrics
