// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder on stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - leveled helpers taking the context (Info, InfoKV, WarnKV, ErrorKV, ...).
//
// Services accept a context and extract the logger from it, so a device
// serial or an RPC method name attached once shows up on every entry.
package logger
