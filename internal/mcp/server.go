package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/nixdoc/internal/indexer"
	"github.com/dshills/nixdoc/internal/lookup"
	"github.com/dshills/nixdoc/internal/searcher"
	"github.com/dshills/nixdoc/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "nixdoc"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Options configures a Server. Zero values get working defaults.
type Options struct {
	Indexer *indexer.Indexer // Tree scanner used by search_docs
	Lookup  *lookup.Service  // Per-file scanner used by the position tools
	Cache   storage.Storage  // Optional, reported by get_status
	Logger  *log.Logger
	Output  io.Writer // Where print_doc writes (default: stderr)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	searcher *searcher.Searcher
	lookup   *lookup.Service
	cache    storage.Storage
	logger   *log.Logger
	output   io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(opts Options) (*Server, error) {
	if opts.Lookup == nil {
		opts.Lookup = lookup.NewService(nil, lookup.DefaultCacheSize)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		searcher: searcher.NewSearcher(opts.Indexer),
		lookup:   opts.Lookup,
		cache:    opts.Cache,
		logger:   opts.Logger,
		output:   opts.Output,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve runs the MCP server on stdio until ctx is canceled or stdin closes.
// The cache, if any, is closed on return.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if s.cache != nil {
			_ = s.cache.Close()
		}
	}()

	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(searchDocsTool(), s.handleSearchDocs)
	s.mcp.AddTool(getDocTool(), s.handleGetDoc)
	s.mcp.AddTool(printDocTool(), s.handlePrintDoc)
	s.mcp.AddTool(getLambdaPosTool(), s.handleGetLambdaPos)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
