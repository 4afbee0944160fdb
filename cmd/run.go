package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

var (
	runMode     string
	runKeywords []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the monitoring pipeline",
	Long:  "Discovers professionals, collects and matches reviews, analyzes new extractions, and recomputes reputation snapshots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(runKeywords) > 0 {
			cfg.Monitor.Keywords = runKeywords
		}

		env, err := initMonitor(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var run *model.MonitoringRun
		switch model.RunMode(runMode) {
		case model.ModeFull:
			run, err = env.Monitor.RunFull(ctx)
		case model.ModeIncremental:
			run, err = env.Monitor.RunIncremental(ctx)
		case model.ModeRebuild:
			run, err = env.Monitor.RunRebuild(ctx)
		default:
			return eris.Errorf("unknown mode %q (expected full, incremental, or rebuild)", runMode)
		}
		if err != nil {
			return eris.Wrap(err, "monitoring run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "incremental", "run mode: full, incremental, or rebuild")
	runCmd.Flags().StringSliceVar(&runKeywords, "keywords", nil, "override configured search keywords")
	rootCmd.AddCommand(runCmd)
}
