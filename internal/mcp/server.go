package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"repodoc/internal/config"
	"repodoc/internal/docgen"
	"repodoc/internal/snapshot"
	"repodoc/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "repodoc-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultCacheDir is the default location for the cache database
	DefaultCacheDir = "~/.repodoc/cache"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	store  storage.Store
	loader *snapshot.Loader
	gen    docgen.Generator
	cfg    config.Config
}

// NewServer creates a new MCP server instance
func NewServer(cfg config.Config) (*Server, error) {
	cacheDir := cfg.CachePath
	if cacheDir == "" || cacheDir == DefaultCacheDir {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".repodoc", "cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(cacheDir, "repodoc.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	gen, err := docgen.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize documentation provider: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		store:  store,
		loader: snapshot.New(snapshot.Config{IncludeTests: cfg.IncludeTests}),
		gen:    gen,
		cfg:    cfg,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.store.Close()
		_ = s.gen.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(partitionRepositoryTool(), s.handlePartitionRepository)
	s.mcp.AddTool(documentRepositoryTool(), s.handleDocumentRepository)
	s.mcp.AddTool(getCachedPartitionTool(), s.handleGetCachedPartition)
	return nil
}
