package model

import "time"

// RunMode selects how much ground a monitoring run covers.
type RunMode string

const (
	// ModeFull iterates every keyword with exhaustive registry pagination.
	ModeFull RunMode = "full"
	// ModeIncremental samples a bounded set of professionals per keyword and
	// sweeps the unanalyzed backlog.
	ModeIncremental RunMode = "incremental"
	// ModeRebuild behaves like full but carries the intent of recomputing
	// everything; it never skips professionals seen in earlier runs.
	ModeRebuild RunMode = "rebuild"
)

// RunStatus is the lifecycle state of a monitoring run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunCounters tallies the work a run performed. Partial progress is reported
// even when the run fails.
type RunCounters struct {
	ProfessionalsProcessed int `json:"professionals_processed"`
	ExtractionsCreated     int `json:"extractions_created"`
	AnalysesCompleted      int `json:"analyses_completed"`
	AnalysesFailed         int `json:"analyses_failed"`
}

// MonitoringRun is the audit record for one pipeline invocation. Exactly one
// run is open at a time; it moves from running to completed or failed and
// never transitions again.
type MonitoringRun struct {
	ID          string      `json:"run_id"`
	Mode        RunMode     `json:"mode"`
	Keywords    []string    `json:"keywords"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Counters    RunCounters `json:"counters"`
	Status      RunStatus   `json:"status"`
	Error       string      `json:"error,omitempty"`
}
