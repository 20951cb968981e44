package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoadDefaults ensures an empty environment yields the documented defaults.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEMETRY_WSS", "")
	t.Setenv("MCP_HOST", "")
	t.Setenv("MCP_PORT", "")
	t.Setenv("VERBOSE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "", cfg.EndpointURL)
	require.Equal(t, DefaultMCPHost, cfg.MCPHost)
	require.Equal(t, DefaultMCPPort, cfg.MCPPort)
	require.False(t, cfg.Verbose)
}

// TestLoadFromEnvironment ensures every option is picked up from its variable.
func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TELEMETRY_WSS", "wss://example.com/prod")
	t.Setenv("MCP_HOST", "10.0.0.5")
	t.Setenv("MCP_PORT", "4455")
	t.Setenv("VERBOSE", "1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "wss://example.com/prod", cfg.EndpointURL)
	require.Equal(t, "10.0.0.5", cfg.MCPHost)
	require.Equal(t, 4455, cfg.MCPPort)
	require.True(t, cfg.Verbose)
	require.Equal(t, "10.0.0.5:4455", cfg.MCPAddr())
}

func TestLoadRejectsGarbagePort(t *testing.T) {
	t.Setenv("MCP_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "MCP_PORT")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing endpoint",
			cfg:     Config{MCPHost: "127.0.0.1", MCPPort: 32123},
			wantErr: "no telemetry endpoint",
		},
		{
			name:    "http scheme rejected",
			cfg:     Config{EndpointURL: "https://example.com", MCPHost: "127.0.0.1", MCPPort: 32123},
			wantErr: "scheme must be ws or wss",
		},
		{
			name:    "missing host",
			cfg:     Config{EndpointURL: "wss://", MCPHost: "127.0.0.1", MCPPort: 32123},
			wantErr: "missing host",
		},
		{
			name:    "port out of range",
			cfg:     Config{EndpointURL: "wss://example.com", MCPHost: "127.0.0.1", MCPPort: 70000},
			wantErr: "invalid MCP port",
		},
		{
			name: "valid",
			cfg:  Config{EndpointURL: "wss://example.com/prod", MCPHost: "127.0.0.1", MCPPort: 32123},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
