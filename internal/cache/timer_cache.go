package cache

import (
	"context"
	"errors"
	"sync"

	model "worktracker.com/worktracker/internal/models"
)

// TimerCache mirrors each user's running timer for the once-a-second elapsed display.
// A cached nil timer means "known idle". The store stays authoritative.
type TimerCache interface {
	Get(ctx context.Context, userID string) (*model.ActiveTimer, error)

	Set(ctx context.Context, userID string, timer *model.ActiveTimer) error

	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("timer not cached")

type MemoryTimerCache struct {
	mu     sync.RWMutex
	timers map[string]*model.ActiveTimer
}

func NewMemoryTimerCache() *MemoryTimerCache {
	return &MemoryTimerCache{timers: make(map[string]*model.ActiveTimer)}
}

func (m *MemoryTimerCache) Get(ctx context.Context, userID string) (*model.ActiveTimer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timer, ok := m.timers[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	if timer == nil {
		return nil, nil
	}
	copied := *timer
	return &copied, nil
}

func (m *MemoryTimerCache) Set(ctx context.Context, userID string, timer *model.ActiveTimer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if timer == nil {
		m.timers[userID] = nil
		return nil
	}
	copied := *timer
	m.timers[userID] = &copied
	return nil
}

func (m *MemoryTimerCache) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.timers, userID)
	return nil
}
