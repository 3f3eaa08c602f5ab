// Package http contains the chi handlers for the dataset API. Handlers
// depend on narrow service interfaces, render success envelopes with
// go-chi/render, and map service sentinel errors onto RFC 7807 problem
// responses through the shared error handler.
package http
