package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/riskibarqy/league-vault/internal/domain/league"
)

// memoryStore keeps the document encoded, like the file store, so every Load
// hands out an independent copy.
type memoryStore struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

func newMemoryStore(t *testing.T, state league.State) *memoryStore {
	t.Helper()

	data, err := league.Encode(state)
	if err != nil {
		t.Fatalf("encode seed state: %v", err)
	}
	return &memoryStore{data: data}
}

func (m *memoryStore) Load(_ context.Context) (league.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return league.Decode(m.data)
}

func (m *memoryStore) Update(_ context.Context, fn league.MutateFunc) (league.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := league.Decode(m.data)
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
	data, err := league.Encode(state)
	if err != nil {
		return league.State{}, err
	}
	m.data = data
	m.writes++
	return state, nil
}

func (m *memoryStore) snapshot() (string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data), m.writes
}

type panickingStore struct {
	league.Repository
}

func (panickingStore) Update(context.Context, league.MutateFunc) (league.State, error) {
	panic("disk on fire")
}

type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceIDs) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return "id-" + string(rune('a'+s.next-1)), nil
}
