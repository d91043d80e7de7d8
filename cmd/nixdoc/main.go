// Command nixdoc searches documentation comments of lambda bindings in a tree
// of Nix files and serves position lookups over MCP.
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// fang prints the error and handles the interrupt signals
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
