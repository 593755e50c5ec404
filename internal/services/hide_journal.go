package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/platform"
	"icloudmonkey/internal/repository"
	"icloudmonkey/internal/types"
)

const (
	// DefaultFlushInterval is how often queued hides are written out
	DefaultFlushInterval = 30 * time.Second

	// maxPending bounds the in-memory queue while the database is failing
	maxPending = 10000
)

// HideJournal records hides for the current session and persists them in the background
type HideJournal struct {
	mutex              sync.Mutex
	flushMu            sync.Mutex // held from taking a batch until it is saved or requeued
	pending            []types.HideEvent
	sessionID          string
	repository         repository.HideRepository
	logger             logging.Logger
	flushInterval      time.Duration
	persistenceEnabled bool
	now                func() time.Time

	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewHideJournal creates a journal writing to repo with a fresh session id
func NewHideJournal(repo repository.HideRepository, flushInterval time.Duration, logger logging.Logger) *HideJournal {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}

	return &HideJournal{
		sessionID:          uuid.NewString(),
		repository:         repo,
		logger:             logger,
		flushInterval:      flushInterval,
		persistenceEnabled: true,
		now:                time.Now,
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
	}
}

// SessionID identifies the hides recorded by this process
func (j *HideJournal) SessionID() string {
	return j.sessionID
}

// RecordHide queues a hide; it never touches the database
func (j *HideJournal) RecordHide(title string, h platform.Handle, source types.HideSource) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if len(j.pending) >= maxPending {
		j.pending = j.pending[1:]
		j.logger.Warn("Hide journal queue full, dropping oldest event", "max_pending", maxPending)
	}

	j.pending = append(j.pending, types.HideEvent{
		SessionID: j.sessionID,
		Title:     title,
		Handle:    uint64(h),
		Source:    source,
		HiddenAt:  j.now(),
	})
}

// PendingCount returns the number of hides not yet written
func (j *HideJournal) PendingCount() int {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return len(j.pending)
}

// SetPersistenceEnabled turns database writes on or off; hides keep queueing
func (j *HideJournal) SetPersistenceEnabled(enabled bool) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	j.persistenceEnabled = enabled
}

// IsPersistenceEnabled reports whether flushes reach the database
func (j *HideJournal) IsPersistenceEnabled() bool {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.persistenceEnabled
}
