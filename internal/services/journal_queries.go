package services

import (
	"context"

	"icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/types"
)

// Stats merges stored journal statistics with hides still queued in memory.
// It waits for a running flush so every hide is counted exactly once.
func (j *HideJournal) Stats(ctx context.Context) (*types.JournalStats, error) {
	if j.repository == nil {
		return nil, errors.NewRepositoryError("Stats", nil, errors.ErrCodeConnection)
	}

	j.flushMu.Lock()
	defer j.flushMu.Unlock()

	stats, err := j.repository.GetStats(ctx, j.sessionID)
	if err != nil {
		return nil, err
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()

	n := int64(len(j.pending))
	stats.SessionHides += n
	stats.TotalHides += n
	if n > 0 {
		last := j.pending[len(j.pending)-1]
		if stats.LastHide == nil || last.HiddenAt.After(stats.LastHide.HiddenAt) {
			stats.LastHide = &last
		}
	}
	return stats, nil
}

// TotalHidden returns the all-time hide count, or 0 when it cannot be read
func (j *HideJournal) TotalHidden(ctx context.Context) int64 {
	stats, err := j.Stats(ctx)
	if err != nil {
		j.logger.Debug("Could not read hide journal total", "error", err)
		return 0
	}
	return stats.TotalHides
}

// CleanupOldData removes journal entries older than retentionDays. Zero keeps everything.
func (j *HideJournal) CleanupOldData(ctx context.Context, retentionDays int) (int64, error) {
	if j.repository == nil {
		return 0, errors.NewRepositoryError("CleanupOldData", nil, errors.ErrCodeConnection)
	}
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	return j.repository.DeleteOlderThan(ctx, cutoff)
}
