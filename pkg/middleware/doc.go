// Package middleware provides HTTP middleware for the vgrid live server.
//
// This package includes:
//   - OpenTelemetry tracing of every request
//   - Prometheus metrics for requests, WebSocket messages and row patches
//
// Both are chi-compatible func(http.Handler) http.Handler values:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r := chi.NewRouter()
//	r.Use(middleware.Tracing(), m.Handler)
//
// Routes are labelled by their chi pattern ("/ws", "/grid"), not the raw
// path, so metrics stay low-cardinality.
//
// # Context Propagation
//
// Tracing stores the server span in the request context. Handlers reach it
// with trace.SpanFromContext(r.Context()) and pass r.Context() to
// downstream calls so database and HTTP clients inherit the trace.
package middleware
