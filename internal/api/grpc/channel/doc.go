// Package channel implements the radiobridge.v1.MethodChannel gRPC service.
//
// The service has a single unary method, Invoke. A request is a
// google.protobuf.Struct with "channel", "method" and "arguments" fields and the
// response is a google.protobuf.Value, so the wire format is the flat key/value
// maps clients already exchange with the handset bridge. The descriptor is
// written by hand because the messages are well-known types.
package channel
