package models

import "time"

// Run statuses recorded in etl_runs
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// ETLRun is the audit row written once per job run
type ETLRun struct {
	RunID      string    `db:"run_id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Status     string    `db:"status"`
	Notes      string    `db:"notes"`
}
