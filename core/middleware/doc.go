// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: verifies bearer tokens issued at login, stores the claims in the
//     request locals and gates admin-only routes with RequireRole.
//   - rayid: tags every request with a Request ID (RayID) in the locals and
//     the X-Ray-ID response header for tracing.
//
// RayID is registered first so every later log line carries it.
package middleware
