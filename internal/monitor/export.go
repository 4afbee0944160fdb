package monitor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rmtwatch/rmtwatch/internal/model"
	"github.com/rmtwatch/rmtwatch/internal/store"
)

// exportRunHistory is how many recent runs the history export includes.
const exportRunHistory = 10

type leaderboardExport struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Entries     []model.ReputationSnapshot `json:"entries"`
}

type runHistoryExport struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Runs        []model.MonitoringRun `json:"runs"`
}

// Export writes the current leaderboard and recent run history as JSON files
// under dir, creating it if needed. It needs only the store, so callers can
// export without wiring up API clients.
func Export(ctx context.Context, st store.Store, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create export dir %s", dir)
	}
	now := time.Now().UTC()

	snapshots, err := st.LatestSnapshots(ctx)
	if err != nil {
		return eris.Wrap(err, "load leaderboard")
	}
	if err := writeExport(filepath.Join(dir, "leaderboard.json"), leaderboardExport{
		GeneratedAt: now,
		Entries:     snapshots,
	}); err != nil {
		return err
	}

	runs, err := st.ListRuns(ctx, store.RunFilter{Limit: exportRunHistory})
	if err != nil {
		return eris.Wrap(err, "load run history")
	}
	if err := writeExport(filepath.Join(dir, "runs.json"), runHistoryExport{
		GeneratedAt: now,
		Runs:        runs,
	}); err != nil {
		return err
	}

	zap.L().Info("export written",
		zap.String("dir", dir),
		zap.Int("leaderboard_entries", len(snapshots)),
		zap.Int("runs", len(runs)),
	)
	return nil
}

func writeExport(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
