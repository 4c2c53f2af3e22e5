package navdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunSummary is one persisted construction run.
type RunSummary struct {
	RunID              string
	StartedAt          time.Time
	Duration           time.Duration
	Checkpoints        int
	SkippedCheckpoints int
	ImuSamples         int
	DepthSamples       int
	Nodes              int
	Factors            int
	SolverCalls        int
	FactorCounts       map[string]int
}

// InsertRun persists a run summary and its per-factor counts. A missing
// RunID gets a fresh UUID; the (possibly generated) id is returned.
func (db *DB) InsertRun(run *RunSummary) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, started_at, duration_ms, checkpoints, skipped_checkpoints,
			imu_samples, depth_samples, nodes, factors, solver_calls
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt, run.Duration.Milliseconds(),
		run.Checkpoints, run.SkippedCheckpoints,
		run.ImuSamples, run.DepthSamples,
		run.Nodes, run.Factors, run.SolverCalls,
	)
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	for name, count := range run.FactorCounts {
		if _, err := tx.Exec(`
			INSERT INTO factor_counts (run_id, factor_name, count)
			VALUES (?, ?, ?)`, run.RunID, name, count); err != nil {
			return "", fmt.Errorf("insert factor count %s/%s: %w", run.RunID, name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run insert: %w", err)
	}
	return run.RunID, nil
}

// GetRun loads one run summary, factor counts included.
func (db *DB) GetRun(runID string) (*RunSummary, error) {
	run := &RunSummary{RunID: runID, FactorCounts: map[string]int{}}
	var durationMs int64
	err := db.QueryRow(`
		SELECT started_at, duration_ms, checkpoints, skipped_checkpoints,
		       imu_samples, depth_samples, nodes, factors, solver_calls
		FROM runs WHERE run_id = ?`, runID).Scan(
		&run.StartedAt, &durationMs, &run.Checkpoints, &run.SkippedCheckpoints,
		&run.ImuSamples, &run.DepthSamples, &run.Nodes, &run.Factors, &run.SolverCalls,
	)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond

	rows, err := db.Query(`SELECT factor_name, count FROM factor_counts WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("load factor counts for %s: %w", runID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		run.FactorCounts[name] = count
	}
	return run, rows.Err()
}

// ListRuns returns the most recent run summaries, newest first, without
// factor counts.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, duration_ms, checkpoints, skipped_checkpoints,
		       imu_samples, depth_samples, nodes, factors, solver_calls
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var durationMs int64
		if err := rows.Scan(
			&run.RunID, &run.StartedAt, &durationMs,
			&run.Checkpoints, &run.SkippedCheckpoints,
			&run.ImuSamples, &run.DepthSamples,
			&run.Nodes, &run.Factors, &run.SolverCalls,
		); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
