package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/freeeve/stake-lattice/api/pkg/lattice"
)

type broadcastEvent struct {
	sessionID string
	eventType string
	data      any
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (m *mockBroadcaster) BroadcastSessionEvent(sessionID, eventType string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, broadcastEvent{sessionID, eventType, data})
}

func (m *mockBroadcaster) last() broadcastEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return broadcastEvent{}
	}
	return m.events[len(m.events)-1]
}

// mockCache is an in-memory AnalysisCache that counts calls.
type mockCache struct {
	mu      sync.Mutex
	data    map[string][]lattice.TargetRecord
	gets    int
	sets    int
	failGet bool
	failSet bool
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]lattice.TargetRecord)}
}

func (m *mockCache) GetTargets(_ context.Context, key string) ([]lattice.TargetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failGet {
		return nil, errors.New("cache down")
	}
	return m.data[key], nil
}

func (m *mockCache) SetTargets(_ context.Context, key string, targets []lattice.TargetRecord, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.failSet {
		return errors.New("cache down")
	}
	m.data[key] = targets
	return nil
}
