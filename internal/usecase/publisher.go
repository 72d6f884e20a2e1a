package usecase

import "context"

const EventLeagueUpdated = "league:updated"

// Reasons carried in the "reason" field of a league:updated payload.
const (
	ReasonSaveLeague          = "saveLeague"
	ReasonBidPlaced           = "bidPlaced"
	ReasonSnapshotCreated     = "snapshotCreated"
	ReasonSnapshotRestored    = "snapshotRestored"
	ReasonAutoWeeklySnapshot  = "autoWeeklySnapshot"
	ReasonAutoAuctionRollover = "autoAuctionRollover"
)

// Publisher is a fire-and-forget notification sink. Implementations must not
// block the caller.
type Publisher interface {
	Publish(ctx context.Context, event string, payload map[string]any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(_ context.Context, _ string, _ map[string]any) {}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func publishLeagueUpdated(ctx context.Context, publisher Publisher, reason string, extra map[string]any) {
	payload := make(map[string]any, len(extra)+1)
	for key, value := range extra {
		payload[key] = value
	}
	payload["reason"] = reason
	publisher.Publish(ctx, EventLeagueUpdated, payload)
}
