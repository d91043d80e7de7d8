package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/nixdoc/internal/lookup"
	"github.com/dshills/nixdoc/internal/mcp"
	"github.com/dshills/nixdoc/internal/parser"
	"github.com/dshills/nixdoc/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve search and position lookups over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout is reserved for MCP protocol messages
			a.logger.Info("starting MCP server",
				"version", version,
				"build_mode", storage.BuildMode,
				"driver", storage.DriverName)

			cache := a.openCache()

			svc := lookup.NewService(parser.NewWithLogger(a.logger), lookup.DefaultCacheSize)
			svc.SetLogger(a.logger)

			server, err := mcp.NewServer(mcp.Options{
				Indexer: a.newIndexer(cache),
				Lookup:  svc,
				Cache:   cache,
				Logger:  a.logger,
				Output:  cmd.ErrOrStderr(),
			})
			if err != nil {
				if cache != nil {
					_ = cache.Close()
				}
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			a.logger.Info("MCP server ready, listening on stdio")
			if err := server.Serve(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return fmt.Errorf("server error: %w", err)
			}

			a.logger.Info("server stopped")
			return nil
		},
	}
}
