// Package session executes single command exchanges against one device
// link.
//
// Ownership boundary:
// - exchange sequence: look up, encode, send, read per shape, decode
// - per-exchange timing and size limits
// - transport error classification
// - reconnect backoff primitives
package session
