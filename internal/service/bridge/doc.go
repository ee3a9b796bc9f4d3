// Package bridge hosts the radio-bridge daemon.
//
// The service owns one stability tracker, the optimization settings and the
// handset collaborator, and answers the method channel calls. While stability
// mode is active a watcher polls the handset and turns telephony changes into
// tracker events.
package bridge
