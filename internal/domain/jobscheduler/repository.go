package jobscheduler

import "context"

type Repository interface {
	RecordRun(ctx context.Context, event RunEvent) error
	// ListRuns returns the newest events first, at most limit of them.
	ListRuns(ctx context.Context, limit int) ([]RunEvent, error)
}
