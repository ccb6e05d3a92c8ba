package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// TokenSecret signs and verifies bearer tokens.
	TokenSecret string `mapstructure:"token_secret" default:""`
	// TokenTTL is the lifetime of an issued token.
	TokenTTL time.Duration `mapstructure:"token_ttl" default:"8h"`
	// BodyLimitMB caps request bodies, image uploads included.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"10"`
}

// HasTokenSecret reports whether token auth can be enabled.
func (c Config) HasTokenSecret() bool {
	return c.TokenSecret != ""
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 10 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}
