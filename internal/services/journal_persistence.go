package services

import (
	"context"
	"time"

	"icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/types"
)

// Start launches the periodic flush loop. Calling it twice is a no-op.
func (j *HideJournal) Start() {
	j.mutex.Lock()
	if j.started {
		j.mutex.Unlock()
		return
	}
	j.started = true
	j.mutex.Unlock()

	go j.persistenceLoop()
}

func (j *HideJournal) persistenceLoop() {
	defer close(j.done)

	ticker := time.NewTicker(j.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Flush(context.Background()); err != nil {
				j.logger.Warn("Periodic hide journal flush failed", "error", err, "pending", j.PendingCount())
			}
		case <-j.stop:
			return
		}
	}
}

// Stop ends the flush loop and writes whatever is still queued
func (j *HideJournal) Stop(ctx context.Context) error {
	j.stopOnce.Do(func() {
		close(j.stop)

		j.mutex.Lock()
		started := j.started
		j.mutex.Unlock()

		if started {
			select {
			case <-j.done:
			case <-ctx.Done():
			}
		}
	})

	return j.Flush(ctx)
}

// Flush writes queued hides in one transaction. On a transient failure they are
// put back in front of anything recorded meanwhile; a batch the database rejects
// outright is dropped.
func (j *HideJournal) Flush(ctx context.Context) error {
	if j.repository == nil {
		return errors.NewRepositoryError("Flush", nil, errors.ErrCodeConnection)
	}

	j.flushMu.Lock()
	defer j.flushMu.Unlock()

	j.mutex.Lock()
	if !j.persistenceEnabled || len(j.pending) == 0 {
		j.mutex.Unlock()
		return nil
	}
	batch := j.pending
	j.pending = nil
	j.mutex.Unlock()

	start := time.Now()
	if err := j.repository.SaveHideEvents(ctx, batch); err != nil {
		if unstorable(err) {
			logging.LogError(j.logger, err, "HideJournal.Flush", map[string]interface{}{
				"dropped_events": len(batch),
			})
			return err
		}
		j.requeue(batch)
		return err
	}

	j.logger.Debug("Hide journal flushed", "events", len(batch), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// unstorable reports failures that writing the same batch again cannot fix
func unstorable(err error) bool {
	return errors.IsValidation(err) ||
		errors.IsConstraint(err) ||
		errors.IsDuplicate(err) ||
		errors.IsCorruption(err)
}

func (j *HideJournal) requeue(batch []types.HideEvent) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	merged := make([]types.HideEvent, 0, len(batch)+len(j.pending))
	merged = append(merged, batch...)
	merged = append(merged, j.pending...)
	if over := len(merged) - maxPending; over > 0 {
		merged = merged[over:]
	}
	j.pending = merged
}
