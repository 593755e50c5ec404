package repository

import (
	"context"
	"time"

	"icloudmonkey/internal/types"
)

// HideRepository persists the hide journal
type HideRepository interface {
	// SaveHideEvents inserts all events atomically
	SaveHideEvents(ctx context.Context, events []types.HideEvent) error

	CountHides(ctx context.Context) (int64, error)
	CountHidesForSession(ctx context.Context, sessionID string) (int64, error)
	// LastHide returns a NOT_FOUND repository error when the journal is empty
	LastHide(ctx context.Context) (*types.HideEvent, error)
	GetStats(ctx context.Context, sessionID string) (*types.JournalStats, error)

	// DeleteOlderThan removes events hidden before cutoff and returns how many went
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	WithTransaction(ctx context.Context, fn func(repo HideRepository) error) error
}
