package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-vault/internal/domain/auction"
	"github.com/riskibarqy/league-vault/internal/domain/jobscheduler"
	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/riskibarqy/league-vault/internal/domain/schedule"
	"github.com/riskibarqy/league-vault/internal/platform/id"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/platform/metrics"
	"github.com/sourcegraph/conc/panics"
)

const (
	JobWeeklySnapshot  = "weekly-snapshot"
	JobAuctionRollover = "auction-rollover"

	windowPrefixWeekly  = "weekly"
	windowPrefixAuction = "auction"

	defaultTickInterval = time.Minute
)

type JobOutcome string

const (
	OutcomeNotDue     JobOutcome = "not_due"
	OutcomeAlreadyRan JobOutcome = "already_ran"
	OutcomeCompleted  JobOutcome = "completed"
	OutcomeFailed     JobOutcome = "failed"
)

type WeeklySchedulerConfig struct {
	TickInterval   time.Duration
	SnapshotWindow schedule.Weekly
	AuctionWindow  schedule.Weekly
}

type JobResult struct {
	Job              string     `json:"job"`
	WindowID         string     `json:"window_id,omitempty"`
	Outcome          JobOutcome `json:"outcome"`
	Forced           bool       `json:"forced"`
	ResolvedAuctions int        `json:"resolved_auctions,omitempty"`
	ClearedBids      int        `json:"cleared_bids,omitempty"`
	SignedPlayers    int        `json:"signed_players,omitempty"`
	SnapshotID       string     `json:"snapshot_id,omitempty"`
	Error            string     `json:"error,omitempty"`
}

// WeeklyScheduler fires the weekly snapshot and the auction rollover at most
// once per window. Whether a window already fired is decided from the markers
// in the stored document, never from process memory.
type WeeklyScheduler struct {
	store     league.Repository
	snapshots *SnapshotService
	publisher Publisher
	runs      jobscheduler.Repository
	idGen     id.Generator
	metrics   *metrics.Manager
	cfg       WeeklySchedulerConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewWeeklyScheduler(
	store league.Repository,
	snapshots *SnapshotService,
	publisher Publisher,
	runs jobscheduler.Repository,
	idGen id.Generator,
	m *metrics.Manager,
	cfg WeeklySchedulerConfig,
	logger *logging.Logger,
) *WeeklyScheduler {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}

	return &WeeklyScheduler{
		store:     store,
		snapshots: snapshots,
		publisher: publisher,
		runs:      runs,
		idGen:     idGen,
		metrics:   m,
		cfg:       cfg,
		logger:    logger.Named("scheduler"),
		now:       time.Now,
	}
}

// Jobs lists the job names in the order a tick runs them.
func (s *WeeklyScheduler) Jobs() []string {
	return []string{JobWeeklySnapshot, JobAuctionRollover}
}

// Run checks once immediately, then on every tick until ctx is done.
func (s *WeeklyScheduler) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "weekly scheduler started", "tick_interval", s.cfg.TickInterval.String())

	s.Tick(ctx)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "weekly scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick evaluates every job once. The snapshot runs first so the weekly archive
// holds the document as it was before the rollover.
func (s *WeeklyScheduler) Tick(ctx context.Context) []JobResult {
	out := make([]JobResult, 0, 2)
	for _, job := range s.Jobs() {
		out = append(out, s.runJob(ctx, job, false))
	}
	return out
}

// RunJob runs one job now. force skips the time-window check but the marker
// is still honoured, so a finished window never runs twice.
func (s *WeeklyScheduler) RunJob(ctx context.Context, job string, force bool) (JobResult, error) {
	if _, ok := s.windowFor(job); !ok {
		return JobResult{}, fmt.Errorf("%w: job=%s", ErrNotFound, job)
	}

	result := s.runJob(ctx, job, force)
	if result.Outcome == OutcomeFailed {
		return result, fmt.Errorf("run job %s: %s", job, result.Error)
	}
	return result, nil
}

func (s *WeeklyScheduler) windowFor(job string) (schedule.Weekly, bool) {
	switch job {
	case JobWeeklySnapshot:
		return s.cfg.SnapshotWindow, true
	case JobAuctionRollover:
		return s.cfg.AuctionWindow, true
	default:
		return schedule.Weekly{}, false
	}
}

// JobWindow is where a job stands relative to its weekly window at one instant.
type JobWindow struct {
	Job             string `json:"job"`
	WindowID        string `json:"window_id"`
	InWindow        bool   `json:"in_window"`
	LastRunWindowID string `json:"last_run_window_id,omitempty"`
	Due             bool   `json:"due"`
}

// Windows reports, for every job, the window id at the given instant and
// whether a tick at that instant would run it.
func (s *WeeklyScheduler) Windows(ctx context.Context, at time.Time) ([]JobWindow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeeklyScheduler.Windows")
	defer span.End()

	if at.IsZero() {
		at = s.now()
	}

	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load league state: %w", err)
	}

	out := make([]JobWindow, 0, len(s.Jobs()))
	for _, job := range s.Jobs() {
		window, _ := s.windowFor(job)
		marker := state.LastAutoAuctionRolloverID
		if job == JobWeeklySnapshot {
			marker = state.LastAutoWeeklySnapshotID
		}

		item := JobWindow{
			Job:      job,
			WindowID: windowIDFor(job, at, window.Location),
			InWindow: window.Contains(at),
		}
		if marker != nil {
			item.LastRunWindowID = *marker
		}
		item.Due = item.InWindow && schedule.ShouldRun(marker, item.WindowID)
		out = append(out, item)
	}
	return out, nil
}

func windowIDFor(job string, at time.Time, loc *time.Location) string {
	if job == JobWeeklySnapshot {
		return schedule.WindowID(windowPrefixWeekly, at, loc)
	}
	return schedule.WindowID(windowPrefixAuction, at, loc)
}

func (s *WeeklyScheduler) runJob(ctx context.Context, job string, force bool) JobResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeeklyScheduler.runJob")
	defer span.End()

	now := s.now()
	window, _ := s.windowFor(job)
	result := JobResult{Job: job, Forced: force}

	if !force && !window.Contains(now) {
		result.Outcome = OutcomeNotDue
		s.metrics.ObserveJob(job, string(result.Outcome), 0)
		s.logger.DebugContext(ctx, "job not due", "job", job)
		return result
	}

	result.WindowID = windowIDFor(job, now, window.Location)

	started := time.Now()
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		switch job {
		case JobWeeklySnapshot:
			err = s.runWeeklySnapshot(ctx, &result)
		default:
			err = s.runAuctionRollover(ctx, now, &result)
		}
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}
	took := time.Since(started)

	switch {
	case err != nil:
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		s.logger.ErrorContext(ctx, "scheduled job failed, marker not advanced",
			"job", job,
			"window_id", result.WindowID,
			"error", err,
		)
	case result.Outcome == OutcomeAlreadyRan:
		s.logger.DebugContext(ctx, "job already ran for window", "job", job, "window_id", result.WindowID)
	default:
		result.Outcome = OutcomeCompleted
		s.logger.InfoContext(ctx, "scheduled job completed",
			"job", job,
			"window_id", result.WindowID,
			"forced", force,
			"resolved_auctions", result.ResolvedAuctions,
			"snapshot_id", result.SnapshotID,
			"duration_ms", took.Milliseconds(),
		)
	}

	s.metrics.ObserveJob(job, string(result.Outcome), took)
	s.recordRun(ctx, result, now, took)
	return result
}

func (s *WeeklyScheduler) runWeeklySnapshot(ctx context.Context, result *JobResult) error {
	if s.snapshots == nil {
		return fmt.Errorf("%w: snapshot archiver is not configured", ErrDependencyUnavailable)
	}

	windowID := result.WindowID
	_, err := s.store.Update(ctx, func(state *league.State) (bool, error) {
		if !schedule.ShouldRun(state.LastAutoWeeklySnapshotID, windowID) {
			result.Outcome = OutcomeAlreadyRan
			return false, nil
		}
		written, err := s.snapshots.archiveWindow(ctx, windowID, *state)
		if err != nil {
			return false, err
		}
		if !written {
			s.logger.WarnContext(ctx, "weekly snapshot already on disk, advancing marker", "snapshot_id", windowID)
		}
		state.LastAutoWeeklySnapshotID = &windowID
		return true, nil
	})
	if err != nil {
		return err
	}
	if result.Outcome == OutcomeAlreadyRan {
		return nil
	}

	result.SnapshotID = windowID
	publishLeagueUpdated(ctx, s.publisher, ReasonAutoWeeklySnapshot, map[string]any{"snapshotId": windowID})
	return nil
}

func (s *WeeklyScheduler) runAuctionRollover(ctx context.Context, now time.Time, result *JobResult) error {
	windowID := result.WindowID
	var resolved auction.Result
	_, err := s.store.Update(ctx, func(state *league.State) (bool, error) {
		if !schedule.ShouldRun(state.LastAutoAuctionRolloverID, windowID) {
			result.Outcome = OutcomeAlreadyRan
			return false, nil
		}
		resolved = auction.Resolve(*state, now)
		resolved.Apply(state)
		state.LastAutoAuctionRolloverID = &windowID
		return true, nil
	})
	if err != nil {
		return err
	}
	if result.Outcome == OutcomeAlreadyRan {
		return nil
	}

	result.ResolvedAuctions = resolved.Auctions
	result.ClearedBids = resolved.ClearedBids
	result.SignedPlayers = len(resolved.NewLogEntries)
	s.metrics.ObserveRollover(resolved.Auctions, resolved.ClearedBids, len(resolved.NewLogEntries))

	if resolved.Changed() {
		publishLeagueUpdated(ctx, s.publisher, ReasonAutoAuctionRollover, map[string]any{
			"windowId":         windowID,
			"resolvedAuctions": resolved.Auctions,
		})
	}
	return nil
}

func (s *WeeklyScheduler) recordRun(ctx context.Context, result JobResult, startedAt time.Time, took time.Duration) {
	if s.runs == nil {
		return
	}
	runID, err := s.idGen.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate job run id failed", "error", err)
		return
	}

	traceID, spanID := traceMetaFromContext(ctx)
	status := jobscheduler.StatusCompleted
	switch result.Outcome {
	case OutcomeAlreadyRan:
		status = jobscheduler.StatusAlreadyRan
	case OutcomeFailed:
		status = jobscheduler.StatusFailed
	}

	event := jobscheduler.RunEvent{
		RunID:            runID,
		JobName:          result.Job,
		WindowID:         result.WindowID,
		Status:           status,
		Forced:           result.Forced,
		ResolvedAuctions: result.ResolvedAuctions,
		SnapshotID:       result.SnapshotID,
		ErrorMessage:     result.Error,
		StartedAt:        startedAt.UTC(),
		Duration:         took,
		TraceID:          traceID,
		SpanID:           spanID,
	}
	if err := s.runs.RecordRun(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job run failed",
			"job", result.Job,
			"status", status,
			"error", err,
		)
	}
}

func (s *WeeklyScheduler) ListRuns(ctx context.Context, limit int) ([]jobscheduler.RunEvent, error) {
	if s.runs == nil {
		return []jobscheduler.RunEvent{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	return runs, nil
}
