// Package server implements the HTTP and WebSocket shell around the presence
// core.
//
// The implementation is organized into specialized files for configuration,
// the connection hub, clients, routing, and HTTP handlers. Chat semantics live
// in package presence; this package only moves frames between sockets and the
// coordinator.
package server
