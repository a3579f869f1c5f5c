package server

import (
	"strings"
	"time"
)

// Config holds configuration for the HTTP status API.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownTimeout bounds how long shutdown waits for a running sync.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"30s"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
