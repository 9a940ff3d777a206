// Package app wires the SecuStats server together: configuration, logging,
// the dataset store, the statistics services, the chi router with its
// middleware chain, and the embedded web dashboard.
//
// # Lifecycle
//
// NewApplication builds the fully-initialized Application, including a
// warm-up load of the delinquency dataset; a fatal dataset problem (missing
// file, missing column, empty file) aborts startup. Run starts the HTTP
// server and blocks until the context is cancelled or an interrupt signal
// arrives, then shuts down gracefully within the configured timeout.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit, so cmd/web decides how to report failures to the operator.
package app
