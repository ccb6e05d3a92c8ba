// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber app from it: listen port, request body
// limit (image uploads go through the same limit) and the secret and lifetime
// of the bearer tokens issued at login.
package server
