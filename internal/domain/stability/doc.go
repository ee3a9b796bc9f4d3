// Package stability accumulates network stability events over one monitoring
// session and derives a bounded 0..100 health score from them.
//
// A Tracker owns exactly one Session. Enable starts a fresh session (a full
// reset, also when already active), Disable ends it. Events recorded while no
// session is active are dropped silently. Summarize computes a Summary on
// demand, and Summary.Fields renders it as the flat key/value map clients expect.
package stability
