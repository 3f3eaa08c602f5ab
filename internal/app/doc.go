// Package app is the composition root: it loads configuration, builds the
// logger, metrics, store, services and router, and runs the HTTP server
// with graceful shutdown.
package app
