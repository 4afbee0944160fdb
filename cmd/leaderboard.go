package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the current reputation leaderboard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snapshots, err := st.LatestSnapshots(ctx)
		if err != nil {
			return eris.Wrap(err, "leaderboard")
		}

		if len(snapshots) == 0 {
			fmt.Fprintln(os.Stderr, "No reputation snapshots yet. Run `rmtwatch run` first.")
			return nil
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshots)
		}

		formatLeaderboard(os.Stdout, snapshots)
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().Bool("json", false, "print snapshots as JSON")
	rootCmd.AddCommand(leaderboardCmd)
}

// formatLeaderboard writes a tabular leaderboard to out.
func formatLeaderboard(out io.Writer, snapshots []model.ReputationSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RANK\tNAME\tSCORE\tREVIEWS\tHIGH_CONF\tSENTIMENT\tFALSE_POS")
	for i, s := range snapshots {
		name := s.Name
		if name == "" {
			name = s.ProfileID
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.1f\t%d\t%d\t%+.2f\t%d\n",
			i+1, name, s.CompositeScore, s.TotalReviews, s.HighConfidenceReviews, s.AverageSentiment, s.FalsePositives)
	}
	_ = w.Flush()
}
