// Package monitor samples a counter on a fixed cadence and fans the
// readings out to sinks.
package monitor
