// Package protocol owns the command/response contract for GQ device
// catalogs.
//
// Ownership boundary:
// - response shape variants
// - command descriptors and argument encoding
// - decode rules and typed values
// - catalog construction and revision extension
package protocol
