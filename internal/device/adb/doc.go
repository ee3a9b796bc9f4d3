// Package adb talks to an Android handset through the Android Debug Bridge.
//
// Client reads telephony state (getprop and dumpsys telephony.registry) into a
// radio.Snapshot and launches activities with "am start". Launch failures are
// classified so callers can tell a route that does not exist on the device
// (ErrActivityNotFound) from one that exists but was refused (ErrLaunchFailed)
// and from transport problems (ErrDevice).
package adb
