// Package radio classifies raw radio-technology codes reported by the handset.
//
// Classify maps a Code to its display name, access technology family and
// generation using plain lookup tables. Unknown codes resolve to an explicit
// Unknown classification, so callers never have to handle an error.
// Snapshot carries the telephony state read from the device.
package radio
