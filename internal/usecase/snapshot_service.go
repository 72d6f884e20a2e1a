package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/riskibarqy/league-vault/internal/platform/cache"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/platform/metrics"
	"github.com/valyala/bytebufferpool"
)

const (
	SnapshotCollisionReject    = "reject"
	SnapshotCollisionOverwrite = "overwrite"

	snapshotLabelMaxLen = 40
	snapshotStampLayout = "2006-01-02T15-04-05Z"

	snapshotSourceManual = "manual"
	snapshotSourceAuto   = "auto"
)

type SnapshotServiceConfig struct {
	CollisionPolicy string
	CacheTTL        time.Duration
}

type SnapshotService struct {
	store     league.Repository
	snapshots league.SnapshotRepository
	publisher Publisher
	cache     *cache.Store[league.State]
	overwrite bool
	metrics   *metrics.Manager
	logger    *logging.Logger
	now       func() time.Time
}

func NewSnapshotService(
	store league.Repository,
	snapshots league.SnapshotRepository,
	publisher Publisher,
	cfg SnapshotServiceConfig,
	m *metrics.Manager,
	logger *logging.Logger,
) *SnapshotService {
	if publisher == nil {
		publisher = NewNoopPublisher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return &SnapshotService{
		store:     store,
		snapshots: snapshots,
		publisher: publisher,
		cache:     cache.NewStore[league.State](cfg.CacheTTL),
		overwrite: strings.EqualFold(strings.TrimSpace(cfg.CollisionPolicy), SnapshotCollisionOverwrite),
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Create archives the current league document under a time-based id.
func (s *SnapshotService) Create(ctx context.Context, label string) (league.SnapshotInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Create")
	defer span.End()

	state, err := s.store.Load(ctx)
	if err != nil {
		return league.SnapshotInfo{}, fmt.Errorf("load league: %w", err)
	}

	now := s.now().UTC()
	snapshotID := NewSnapshotID(now, label)
	if err := s.snapshots.Write(ctx, snapshotID, state, s.overwrite); err != nil {
		return league.SnapshotInfo{}, mapSnapshotError(err, snapshotID)
	}
	s.cache.Delete(ctx, snapshotID)
	s.metrics.ObserveSnapshot(snapshotSourceManual)

	s.logger.InfoContext(ctx, "snapshot created", "snapshot_id", snapshotID)
	publishLeagueUpdated(ctx, s.publisher, ReasonSnapshotCreated, map[string]any{"snapshotId": snapshotID})
	return league.SnapshotInfo{ID: snapshotID, CreatedAt: now}, nil
}

func (s *SnapshotService) List(ctx context.Context) ([]league.SnapshotInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.List")
	defer span.End()

	items, err := s.snapshots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return items, nil
}

// Get reads a snapshot. Snapshots never change once written, so reads are cached.
func (s *SnapshotService) Get(ctx context.Context, snapshotID string) (league.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Get")
	defer span.End()

	snapshotID = strings.TrimSpace(snapshotID)
	if snapshotID == "" {
		return league.State{}, fmt.Errorf("%w: snapshot id is required", ErrInvalidInput)
	}

	state, err := s.cache.GetOrLoad(ctx, snapshotID, func(ctx context.Context) (league.State, error) {
		return s.snapshots.Read(ctx, snapshotID)
	})
	if err != nil {
		return league.State{}, mapSnapshotError(err, snapshotID)
	}
	return state, nil
}

// Restore replaces the live document with a snapshot. Scheduler markers are
// kept from the live document so a restore never re-arms a finished window.
func (s *SnapshotService) Restore(ctx context.Context, snapshotID string) (league.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Restore")
	defer span.End()

	snapshot, err := s.Get(ctx, snapshotID)
	if err != nil {
		return league.State{}, err
	}

	restored, err := s.store.Update(ctx, func(current *league.State) (bool, error) {
		*current = snapshot.WithMarkersFrom(*current)
		return true, nil
	})
	if err != nil {
		return league.State{}, fmt.Errorf("restore snapshot %s: %w", snapshotID, err)
	}

	s.logger.InfoContext(ctx, "snapshot restored", "snapshot_id", snapshotID)
	publishLeagueUpdated(ctx, s.publisher, ReasonSnapshotRestored, map[string]any{"snapshotId": snapshotID})
	return restored, nil
}

// archiveWindow writes the weekly snapshot for a window. An existing snapshot
// with the same id counts as written, so a retry after a crash between the
// snapshot write and the marker save still completes.
func (s *SnapshotService) archiveWindow(ctx context.Context, snapshotID string, state league.State) (bool, error) {
	exists, err := s.snapshots.Exists(ctx, snapshotID)
	if err != nil {
		return false, fmt.Errorf("check snapshot %s: %w", snapshotID, err)
	}
	if exists {
		return false, nil
	}
	if err := s.snapshots.Write(ctx, snapshotID, state, false); err != nil {
		if errors.Is(err, league.ErrSnapshotExists) {
			return false, nil
		}
		return false, fmt.Errorf("write snapshot %s: %w", snapshotID, err)
	}
	s.metrics.ObserveSnapshot(snapshotSourceAuto)
	return true, nil
}

// NewSnapshotID joins a sortable UTC stamp with the sanitised label, if any.
func NewSnapshotID(now time.Time, label string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(now.UTC().Format(snapshotStampLayout))
	if clean := SanitizeSnapshotLabel(label); clean != "" {
		_ = buf.WriteByte('-')
		_, _ = buf.WriteString(clean)
	}
	return buf.String()
}

// SanitizeSnapshotLabel lowercases the label, keeps [a-z0-9-_ ], turns spaces
// into hyphens and truncates to 40 characters.
func SanitizeSnapshotLabel(label string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if buf.Len() >= snapshotLabelMaxLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			_ = buf.WriteByte(byte(r))
		case r == ' ':
			_ = buf.WriteByte('-')
		}
	}
	return buf.String()
}

func mapSnapshotError(err error, snapshotID string) error {
	switch {
	case errors.Is(err, league.ErrSnapshotNotFound):
		return fmt.Errorf("%w: snapshot=%s", ErrNotFound, snapshotID)
	case errors.Is(err, league.ErrSnapshotExists):
		return fmt.Errorf("%w: snapshot %s already exists", ErrConflict, snapshotID)
	case errors.Is(err, league.ErrInvalidSnapshotID):
		return fmt.Errorf("%w: invalid snapshot id %q", ErrInvalidInput, snapshotID)
	default:
		return fmt.Errorf("snapshot %s: %w", snapshotID, err)
	}
}
