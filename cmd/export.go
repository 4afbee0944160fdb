package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rmtwatch/rmtwatch/internal/monitor"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the leaderboard and run history as JSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if err := monitor.Export(ctx, st, exportDir); err != nil {
			return eris.Wrap(err, "export")
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "out", "export", "output directory")
	rootCmd.AddCommand(exportCmd)
}
