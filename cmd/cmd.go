// Package cmd wires the BRC-20 indexer core's cobra command tree, the way
// the teacher's cmd package assembles gaze's.
package cmd

import (
	"context"

	"github.com/brc20indexer/core/pkg/logger"
	"github.com/brc20indexer/core/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brc20-indexer",
	Short: "BRC-20 token indexer core",
	Long:  "Maintains BRC-20 token balances from a stream of inscription events.",
}

func init() {
	rootCmd.AddCommand(
		NewRunCommand(),
		NewMigrateCommand(),
	)
}

// Execute runs the root command, bound to ctx for graceful shutdown.
func Execute(ctx context.Context) {
	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		logger.PanicContext(ctx, "command failed", slogx.Error(err))
	}
}
