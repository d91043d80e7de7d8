package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/nixdoc/internal/storage"
)

// newVersionCmd creates the "version" command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, err := fmt.Fprintf(out, "nixdoc %s\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\nCache Schema: %s\n",
				version, buildTime, storage.BuildMode, storage.DriverName, storage.CurrentSchemaVersion)
			return err
		},
	}
}
