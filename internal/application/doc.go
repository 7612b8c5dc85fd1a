// Package application provides application initialization and dependency wiring.
// It opens the document store, resolves the runtime configuration snapshot and
// builds the handlers, router and HTTP server, keeping the main package focused
// on CLI parsing and orchestration.
package application
