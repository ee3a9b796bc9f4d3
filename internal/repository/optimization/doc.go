// Package optimization persists the optimization toggles of the bridge.
//
// The FileRepository stores the settings as protobuf JSON (a Struct of
// booleans) and exposes a Repository interface that the bridge service depends on.
package optimization
