// Package gateway implements the behaviors of gateway nodes: parallel,
// exclusive, complex, and event-based.
package gateway
