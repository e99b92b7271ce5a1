// Package device opens transports to GQ instruments and identifies what
// is on the other end of the line.
//
// Ownership boundary:
// - serial port and TCP bridge transports
// - probe-and-map device identification
// - port discovery
package device
