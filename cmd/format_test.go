package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	done := now.Add(5 * time.Minute)
	runs := []model.MonitoringRun{
		{
			ID:          "abc12345-6789-0000-0000-000000000000",
			Mode:        model.ModeFull,
			Status:      model.RunStatusCompleted,
			StartedAt:   now,
			CompletedAt: &done,
			Counters:    model.RunCounters{ProfessionalsProcessed: 12, ExtractionsCreated: 4, AnalysesCompleted: 4},
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Mode:      model.ModeIncremental,
			Status:    model.RunStatusRunning,
			StartedAt: now.Add(time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "MODE")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "5m0s")
	assert.Contains(t, output, "incremental")
	assert.Contains(t, output, "running")
}

func TestFormatLeaderboard(t *testing.T) {
	snapshots := []model.ReputationSnapshot{
		{ProfileID: "100", Name: "Jane Doe", CompositeScore: 82.5, TotalReviews: 14, HighConfidenceReviews: 9, AverageSentiment: 0.64},
		{ProfileID: "200", CompositeScore: 41.0, TotalReviews: 3, AverageSentiment: -0.17, FalsePositives: 1},
	}

	var buf bytes.Buffer
	formatLeaderboard(&buf, snapshots)

	output := buf.String()
	assert.Contains(t, output, "RANK")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "82.5")
	assert.Contains(t, output, "+0.64")
	assert.Contains(t, output, "200")
	assert.Contains(t, output, "-0.17")
}
