package league

import (
	"context"
	"errors"
)

var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotExists    = errors.New("snapshot already exists")
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// MutateFunc edits a loaded document in place. Returning false skips the write.
type MutateFunc func(state *State) (bool, error)

// Repository owns the canonical persisted league document.
type Repository interface {
	Load(ctx context.Context) (State, error)
	// Update runs a read-modify-write cycle that no other writer can interleave with.
	Update(ctx context.Context, fn MutateFunc) (State, error)
}

// SnapshotRepository archives immutable point-in-time copies of the document.
type SnapshotRepository interface {
	Write(ctx context.Context, id string, state State, overwrite bool) error
	Read(ctx context.Context, id string) (State, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]SnapshotInfo, error)
}
