package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"interview-memory-service/internal/config"
	memoryservice "interview-memory-service/internal/memory/service"
	"interview-memory-service/internal/memory/store"
	"interview-memory-service/internal/observability/logging"
	"interview-memory-service/internal/service/embed"
)

// STDIO transport (default)
//go run ./cmd/mcp
//go run ./cmd/mcp -transport=stdio
//
// SSE transport on port 8085
//go run ./cmd/mcp -transport=sse -port=8085
//
// StreamableHTTP transport on port 9000
//go run ./cmd/mcp -transport=httpstream -port=9000

var memories *memoryservice.Service

func main() {
	transport := flag.String("transport", "stdio", "Transport method: stdio, sse, or httpstream")
	port := flag.String("port", "8085", "Port for HTTP-based transports (sse, httpstream)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	client, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	embedder, err := embed.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create embedding client")
	}

	memories = memoryservice.New(
		embedder,
		store.NewMongoStore(client, cfg.Mongo),
		memoryservice.WithDefaultLimit(cfg.Search.DefaultLimit),
		memoryservice.WithNumCandidates(cfg.Search.NumCandidates),
	)

	s := server.NewMCPServer(
		"Interview Memory",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool("search_memories",
		mcp.WithDescription("Search stored interview memories by semantic similarity and return the best matches as JSON"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language text to search memories for, e.g. an interview question"),
		),
	)

	s.AddTool(tool, searchMemories)

	switch *transport {
	case "sse":
		log.Info().Str("port", *port).Msg("Starting MCP server with SSE transport")
		sseServer := server.NewSSEServer(s)
		if err := sseServer.Start(":" + *port); err != nil {
			log.Fatal().Err(err).Msg("SSE server error")
		}
	case "httpstream":
		log.Info().Str("port", *port).Msg("Starting MCP server with StreamableHTTP transport")
		httpServer := server.NewStreamableHTTPServer(s)
		if err := httpServer.Start(":" + *port); err != nil {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	case "stdio":
		log.Info().Msg("Starting MCP server with STDIO transport")
		if err := server.ServeStdio(s); err != nil {
			log.Fatal().Err(err).Msg("STDIO server error")
		}
	default:
		log.Fatal().Str("transport", *transport).Msg("Unknown transport, use stdio, sse, or httpstream")
	}
}

func searchMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := memories.Search(ctx, query, 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search memories: %v", err)), nil
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}
