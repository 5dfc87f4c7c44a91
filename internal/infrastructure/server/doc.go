// Package server wires configuration, logging, metrics, tracing, the session
// manager and the HTTP routes into a runnable server.
package server
