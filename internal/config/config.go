// Package config loads bridge configuration from the environment, with
// command-line flags layered on top by the caller.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

const (
	// DefaultMCPHost is the producer host dialed when none is configured.
	DefaultMCPHost = "127.0.0.1"
	// DefaultMCPPort is the producer TCP port dialed when none is configured.
	DefaultMCPPort = 32123
)

type Config struct {
	// EndpointURL is the egress WebSocket endpoint (ws:// or wss://).
	// Required; the bridge has nowhere to publish without it.
	EndpointURL string
	// MCPHost is the TCP host of the JSON-RPC producer.
	MCPHost string
	// MCPPort is the TCP port of the JSON-RPC producer.
	MCPPort int
	// Verbose enables per-message trace logging to stderr.
	Verbose bool
}

// Load loads configuration from environment and defaults.
//
// A missing endpoint is not an error here: flags may still supply it.
// Call Validate once flag overrides have been applied.
func Load() (*Config, error) {
	cfg := &Config{
		EndpointURL: os.Getenv("TELEMETRY_WSS"),
		MCPHost:     os.Getenv("MCP_HOST"),
		MCPPort:     DefaultMCPPort,
		Verbose:     os.Getenv("VERBOSE") == "true" || os.Getenv("VERBOSE") == "1",
	}
	if cfg.MCPHost == "" {
		cfg.MCPHost = DefaultMCPHost
	}
	if portStr := os.Getenv("MCP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid MCP_PORT %q: %w", portStr, err)
		}
		cfg.MCPPort = port
	}
	return cfg, nil
}

// Validate reports whether the configuration is complete enough to start.
func (c *Config) Validate() error {
	if c.EndpointURL == "" {
		return fmt.Errorf("no telemetry endpoint configured (set --wss or TELEMETRY_WSS)")
	}
	u, err := url.Parse(c.EndpointURL)
	if err != nil {
		return fmt.Errorf("invalid telemetry endpoint %q: %w", c.EndpointURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid telemetry endpoint %q: scheme must be ws or wss", c.EndpointURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid telemetry endpoint %q: missing host", c.EndpointURL)
	}
	if c.MCPPort < 1 || c.MCPPort > 65535 {
		return fmt.Errorf("invalid MCP port %d (expected 1-65535)", c.MCPPort)
	}
	return nil
}

// MCPAddr returns the host:port the ingress client dials.
func (c *Config) MCPAddr() string {
	return fmt.Sprintf("%s:%d", c.MCPHost, c.MCPPort)
}
