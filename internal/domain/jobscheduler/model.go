package jobscheduler

import "time"

type RunStatus string

const (
	StatusAlreadyRan RunStatus = "already_ran"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// RunEvent is one scheduler decision that got past the time-window check.
type RunEvent struct {
	RunID            string        `json:"run_id"`
	JobName          string        `json:"job_name"`
	WindowID         string        `json:"window_id"`
	Status           RunStatus     `json:"status"`
	Forced           bool          `json:"forced"`
	ResolvedAuctions int           `json:"resolved_auctions,omitempty"`
	SnapshotID       string        `json:"snapshot_id,omitempty"`
	ErrorMessage     string        `json:"error_message,omitempty"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration_ns"`
	TraceID          string        `json:"trace_id,omitempty"`
	SpanID           string        `json:"span_id,omitempty"`
}
