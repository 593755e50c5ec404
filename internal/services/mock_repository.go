package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/repository"
	"icloudmonkey/internal/types"
)

// MockRepository implements repository.HideRepository in memory for tests
type MockRepository struct {
	mu               sync.RWMutex
	events           []types.HideEvent
	nextID           int64
	saveCallCount    int
	statsCallCount   int
	deleteCallCount  int
	transactionCalls int
	shouldFailSave   bool
	shouldFailStats  bool
	saveErr          error
	lastCutoff       time.Time
}

var _ repository.HideRepository = (*MockRepository)(nil)

// NewMockRepository creates an empty mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// SetFailureModes makes saves or stats reads fail with a retryable connection error
func (m *MockRepository) SetFailureModes(save, stats bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailSave = save
	m.shouldFailStats = stats
}

// SetSaveError makes every save return err until it is reset with nil
func (m *MockRepository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// GetCallCounts returns how often each method was called
func (m *MockRepository) GetCallCounts() (save, stats, del, tx int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCallCount, m.statsCallCount, m.deleteCallCount, m.transactionCalls
}

// Events returns a copy of the stored events
func (m *MockRepository) Events() []types.HideEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.HideEvent, len(m.events))
	copy(out, m.events)
	return out
}

// LastCutoff returns the cutoff passed to the last DeleteOlderThan call
func (m *MockRepository) LastCutoff() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastCutoff
}

func (m *MockRepository) SaveHideEvents(ctx context.Context, events []types.HideEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCallCount++
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.shouldFailSave {
		return errors.NewRepositoryError("SaveHideEvents", fmt.Errorf("mock save failure"), errors.ErrCodeConnection)
	}

	for _, e := range events {
		m.nextID++
		e.ID = m.nextID
		m.events = append(m.events, e)
	}
	return nil
}

func (m *MockRepository) CountHides(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.events)), nil
}

func (m *MockRepository) CountHidesForSession(ctx context.Context, sessionID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked(sessionID), nil
}

func (m *MockRepository) countLocked(sessionID string) int64 {
	var n int64
	for _, e := range m.events {
		if e.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (m *MockRepository) LastHide(ctx context.Context) (*types.HideEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastLocked()
}

func (m *MockRepository) lastLocked() (*types.HideEvent, error) {
	if len(m.events) == 0 {
		return nil, errors.NewRepositoryError("LastHide", nil, errors.ErrCodeNotFound)
	}
	last := m.events[0]
	for _, e := range m.events[1:] {
		if !e.HiddenAt.Before(last.HiddenAt) {
			last = e
		}
	}
	return &last, nil
}

func (m *MockRepository) GetStats(ctx context.Context, sessionID string) (*types.JournalStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statsCallCount++
	if m.shouldFailStats {
		return nil, errors.NewRepositoryError("GetStats", fmt.Errorf("mock stats failure"), errors.ErrCodeConnection)
	}

	stats := &types.JournalStats{
		SessionID:    sessionID,
		SessionHides: m.countLocked(sessionID),
		TotalHides:   int64(len(m.events)),
	}
	if last, err := m.lastLocked(); err == nil {
		stats.LastHide = last
	}
	return stats, nil
}

func (m *MockRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCallCount++
	m.lastCutoff = cutoff

	kept := m.events[:0]
	var deleted int64
	for _, e := range m.events {
		if e.HiddenAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return deleted, nil
}

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repo repository.HideRepository) error) error {
	m.mu.Lock()
	m.transactionCalls++
	m.mu.Unlock()
	return fn(m)
}
