// Package config defines the settings used by the radio-bridge binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Besides the gRPC address it describes how to reach the handset over adb,
// the stability sampling interval, and the ordered routes tried when opening
// the radio testing screen.
package config
