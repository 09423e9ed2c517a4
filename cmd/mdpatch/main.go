// Package main is the entry point for the mdpatch CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yaklabco/mdpatch/internal/cli"
	"github.com/yaklabco/mdpatch/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// An interrupt stops the run between operations; a file being
	// committed is still renamed into place whole.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand(cli.BuildInfo{Version: version, Commit: commit, Date: date})

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Failed operations were already reported with the results.
	if !cli.IsSilent(err) {
		logging.Default().Error("command failed", logging.FieldError, err)
	}
	return cli.ExitCode(err)
}
