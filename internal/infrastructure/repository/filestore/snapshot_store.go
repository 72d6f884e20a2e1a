package filestore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-vault/internal/domain/league"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
)

const snapshotExt = ".json"

var snapshotIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// SnapshotStore writes one file per snapshot under dir, named <id>.json.
type SnapshotStore struct {
	mu     sync.Mutex
	dir    string
	logger *logging.Logger
}

func NewSnapshotStore(dir string, logger *logging.Logger) (*SnapshotStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, crerr.New("snapshot directory is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create snapshot directory %s", dir)
	}
	return &SnapshotStore{dir: dir, logger: logger}, nil
}

func (s *SnapshotStore) Write(ctx context.Context, id string, state league.State, overwrite bool) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := fileExists(path)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return crerr.Wrapf(league.ErrSnapshotExists, "snapshot %s", id)
	}

	data, err := league.Encode(state)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return crerr.Wrapf(err, "write snapshot %s", id)
	}
	if exists {
		s.logger.WarnContext(ctx, "snapshot overwritten", "snapshot_id", id)
	}
	return nil
}

func (s *SnapshotStore) Read(_ context.Context, id string) (league.State, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return league.State{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if crerr.Is(err, fs.ErrNotExist) {
			return league.State{}, crerr.Wrapf(league.ErrSnapshotNotFound, "snapshot %s", id)
		}
		return league.State{}, crerr.Wrapf(err, "read snapshot %s", id)
	}

	state, err := league.Decode(data)
	if err != nil {
		return league.State{}, crerr.Wrapf(err, "snapshot %s", id)
	}
	return state, nil
}

func (s *SnapshotStore) Exists(_ context.Context, id string) (bool, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return false, err
	}
	return fileExists(path)
}

// List returns snapshots newest first.
func (s *SnapshotStore) List(_ context.Context) ([]league.SnapshotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, crerr.Wrapf(err, "list snapshot directory %s", s.dir)
	}

	out := make([]league.SnapshotInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, league.SnapshotInfo{
			ID:        strings.TrimSuffix(name, snapshotExt),
			CreatedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *SnapshotStore) pathFor(id string) (string, error) {
	if !snapshotIDPattern.MatchString(id) {
		return "", crerr.Wrapf(league.ErrInvalidSnapshotID, "%q", id)
	}
	return filepath.Join(s.dir, id+snapshotExt), nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if crerr.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, crerr.Wrapf(err, "stat %s", path)
}
