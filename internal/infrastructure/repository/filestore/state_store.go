package filestore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/platform/metrics"
)

const DefaultStateFileName = "league.json"

// StateStore keeps the league document in one JSON file. Every
// read-modify-write goes through Update and is serialised by mu.
type StateStore struct {
	mu      sync.Mutex
	path    string
	logger  *logging.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

func NewStateStore(dir, fileName string, logger *logging.Logger, m *metrics.Manager) (*StateStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, crerr.New("state directory is required")
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultStateFileName
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create state directory %s", dir)
	}

	return &StateStore{
		path:    filepath.Join(dir, fileName),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}, nil
}

func (s *StateStore) Path() string {
	return s.path
}

func (s *StateStore) Load(ctx context.Context) (league.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *StateStore) Update(ctx context.Context, fn league.MutateFunc) (league.State, error) {
	if fn == nil {
		return league.State{}, crerr.New("mutate func is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return league.State{}, err
	}

	changed, err := fn(&state)
	if err != nil {
		return league.State{}, err
	}
	if !changed {
		return state, nil
	}

	if err := s.write(state); err != nil {
		return league.State{}, err
	}
	return state, nil
}

// load substitutes the empty document for a missing or undecodable file. A
// corrupt file is moved aside first so the next write cannot destroy it.
func (s *StateStore) load(ctx context.Context) (league.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if crerr.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "state file missing, using empty league", "path", s.path)
			return league.EmptyState(), nil
		}
		return league.State{}, crerr.Wrapf(err, "read state file %s", s.path)
	}

	state, err := league.Decode(data)
	if err != nil {
		quarantined := s.path + ".corrupt-" + s.now().UTC().Format("20060102T150405Z")
		if renameErr := os.Rename(s.path, quarantined); renameErr != nil {
			return league.State{}, crerr.Wrapf(renameErr, "quarantine corrupt state file %s", s.path)
		}
		s.logger.WarnContext(ctx, "state file corrupt, using empty league",
			"path", s.path,
			"quarantined_to", quarantined,
			"error", err,
		)
		return league.EmptyState(), nil
	}

	return state, nil
}

func (s *StateStore) write(state league.State) error {
	data, err := league.Encode(state)
	if err == nil {
		err = writeFileAtomic(s.path, data)
	}
	s.metrics.ObserveStoreWrite(err)
	if err != nil {
		return crerr.Wrap(err, "save state")
	}
	return nil
}
