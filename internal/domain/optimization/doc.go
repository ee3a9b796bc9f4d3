// Package optimization defines the network optimization toggles a client can
// switch on the handset bridge (force4G, preferHighBand and so on).
package optimization
