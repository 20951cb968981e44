package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/overlaycast/overlaycast/internal/config"
	"github.com/overlaycast/overlaycast/internal/logging"
	"github.com/overlaycast/overlaycast/internal/mcp"
	"github.com/overlaycast/overlaycast/internal/overlay"
	"github.com/overlaycast/overlaycast/internal/telemetry"
	"github.com/overlaycast/overlaycast/internal/version"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		printUsage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "overlaycast: %v\n", err)
		os.Exit(2)
	}
	if cfg == nil {
		// Version request was already answered.
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "overlaycast: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig merges the environment with command-line flags, flags winning.
// A nil config with a nil error means an informational flag was handled and
// the process should exit cleanly.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("overlaycast", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	wss := fs.String("wss", "", "Telemetry WebSocket endpoint URL")
	mcpHost := fs.String("mcp-host", "", "MCP tool server host")
	mcpPort := fs.Int("mcp-port", 0, "MCP tool server TCP port")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *showHelp {
		return nil, flag.ErrHelp
	}
	if *showVersion {
		fmt.Println("overlaycast " + version.RichVersion())
		return nil, nil
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	if *wss != "" {
		cfg.EndpointURL = *wss
	}
	if *mcpHost != "" {
		cfg.MCPHost = *mcpHost
	}
	if *mcpPort != 0 {
		cfg.MCPPort = *mcpPort
	}
	if *verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(cfg *config.Config) error {
	log := logging.New(os.Stderr, cfg.Verbose)
	log.Info().
		Str("version", version.Version()).
		Str("producer", cfg.MCPAddr()).
		Str("endpoint", cfg.EndpointURL).
		Msg("overlaycast starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := telemetry.NewPublisher(cfg.EndpointURL, log)
	state := overlay.NewState(publisher.Publish)
	client := mcp.NewClient(cfg.MCPAddr(), func(msg mcp.Message) {
		if update, ok := overlay.MapMessage(msg); ok {
			state.Set(update)
		}
	}, log)

	publisher.Start(ctx)
	client.Start(ctx)

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

func printUsage() {
	fmt.Println(`overlaycast - stream game-agent telemetry to a browser overlay

Usage:
  overlaycast [flags]

Reads JSON-RPC traffic from a local MCP tool server, distills it into
overlay lines (goal, action, rationale, result) and forwards them to a
WebSocket endpoint. Both connections redial automatically, so start order
does not matter.

Environment Variables:
  TELEMETRY_WSS  Telemetry WebSocket endpoint URL (required)
  MCP_HOST       MCP tool server host (default: 127.0.0.1)
  MCP_PORT       MCP tool server TCP port (default: 32123)
  VERBOSE        Enable debug logging (true/1)

Flags:
  --wss        Telemetry WebSocket endpoint URL
  --mcp-host   MCP tool server host
  --mcp-port   MCP tool server TCP port
  --verbose    Enable debug logging
  --version    Show version information
  --help       Show this help message

Examples:
  # Bridge the default local producer to a hosted overlay
  TELEMETRY_WSS=wss://overlay.example.com/prod overlaycast

  # Point at a producer on another machine, with debug logging
  overlaycast --wss wss://overlay.example.com/prod --mcp-host 10.0.0.5 --verbose`)
}
