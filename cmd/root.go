package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmtwatch/rmtwatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rmtwatch",
	Short: "Reputation monitoring for registered massage therapists",
	Long:  "Discovers licensed massage therapists on the public register, matches public Google reviews to them, scores match confidence, runs AI analysis, and aggregates composite reputation scores.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
