// Fandom Bot MCP Server - A Model Context Protocol server for Fandom wikis
// Provides tools for reading, editing, and moderating wiki content and
// discussion threads through an authenticated bot session
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/olgasafonova/fandom-bot-mcp-server/discussions"
	"github.com/olgasafonova/fandom-bot-mcp-server/tools"
	"github.com/olgasafonova/fandom-bot-mcp-server/tracing"
	"github.com/olgasafonova/fandom-bot-mcp-server/wiki"
)

const (
	ServerName    = "fandom-bot-mcp-server"
	ServerVersion = "1.0.0"
)

const serverInstructions = `Fandom Bot MCP Server provides tools for operating a bot account on a
Fandom (MediaWiki) wiki and its discussion forums.

Wiki tools cover reading (search, page content, categories, contributions,
backlinks), editing (edit, prepend, append, undo, purge) and administration
(delete, undelete, protect, move, block, unblock, email, create account).
Write tools require FANDOM_USERNAME and FANDOM_PASSWORD; the server logs in
at startup and manages CSRF tokens automatically.

Discussion tools (create, delete, undelete, lock, unlock threads) talk to
the separate Fandom discussion service and are only available when
FANDOM_SITE_ID is set.

Configure via environment variables:
- FANDOM_SERVER: Wiki base URL (e.g., https://mywiki.fandom.com)
- FANDOM_USERNAME / FANDOM_PASSWORD: Bot credentials
- FANDOM_SITE_ID: Discussion site ID (optional)`

func main() {
	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()

	// Load wiki configuration from environment
	config, err := wiki.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize distributed tracing (enabled by OTEL_ENABLED=true or
	// a configured OTEL_EXPORTER_OTLP_ENDPOINT)
	tracingConfig := tracing.DefaultConfig()
	tracingConfig.ServiceVersion = ServerVersion
	shutdownTracing, err := tracing.Setup(ctx, tracingConfig)
	if err != nil {
		logger.Warn("Failed to initialize tracing, continuing without it", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Create wiki client and authenticate when credentials are configured
	wikiClient := wiki.NewClient(config, logger)
	if config.HasCredentials() {
		identity, err := wikiClient.Login(ctx, config.Username, config.Password)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		logger.Info("Authenticated to wiki",
			"user", identity.Name,
			"api_url", wikiClient.APIURL())
	} else {
		logger.Warn("No credentials configured, write tools will fail", "api_url", wikiClient.APIURL())
	}

	// Create discussions client when a site ID is configured
	var discussionsClient *discussions.Client
	if discussionsConfig, err := discussions.LoadConfig(); err != nil {
		logger.Info("Discussion tools disabled", "reason", err)
	} else {
		discussionsClient = discussions.NewClient(discussionsConfig, logger)
	}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})

	// Register all tools
	registry := tools.NewHandlerRegistry(wikiClient, discussionsClient, logger)
	registry.RegisterAll(server)

	// Run server on stdio transport
	logger.Info("Starting Fandom Bot MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.Server,
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
