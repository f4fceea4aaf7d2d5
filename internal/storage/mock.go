package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

// MockStorage is a mock implementation of Storage for testing.
// Records are stored as JSON so callers never share pointers with it.
type MockStorage struct {
	mu        sync.RWMutex
	stories   map[uuid.UUID][]byte
	pools     map[uuid.UUID][]byte
	locks     map[uuid.UUID]string
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		stories: make(map[uuid.UUID][]byte),
		pools:   make(map[uuid.UUID][]byte),
		locks:   make(map[uuid.UUID]string),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every save fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveStory(ctx context.Context, s *plot.Story) error {
	if s == nil {
		return errors.New("story cannot be nil")
	}
	return m.save(m.stories, s.ID, s)
}

func (m *MockStorage) LoadStory(ctx context.Context, id uuid.UUID) (*plot.Story, error) {
	var s plot.Story
	found, err := m.load(m.stories, id, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (m *MockStorage) DeleteStory(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stories, id)
	return nil
}

func (m *MockStorage) LockStory(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return false, nil
	}
	m.locks[id] = owner
	return true, nil
}

func (m *MockStorage) UnlockStory(ctx context.Context, id uuid.UUID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[id] == owner {
		delete(m.locks, id)
	}
	return nil
}

func (m *MockStorage) SavePool(ctx context.Context, p *actor.Pool) error {
	if p == nil {
		return errors.New("pool cannot be nil")
	}
	return m.save(m.pools, p.ID, p)
}

func (m *MockStorage) LoadPool(ctx context.Context, id uuid.UUID) (*actor.Pool, error) {
	var p actor.Pool
	found, err := m.load(m.pools, id, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// PoolCount returns how many pools are stored (for testing).
func (m *MockStorage) PoolCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pools)
}

func (m *MockStorage) save(into map[uuid.UUID][]byte, id uuid.UUID, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	into[id] = data
	return nil
}

func (m *MockStorage) load(from map[uuid.UUID][]byte, id uuid.UUID, v any) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := from[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}
