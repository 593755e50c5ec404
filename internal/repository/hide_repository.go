package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"icloudmonkey/internal/database"
	repoerrors "icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/types"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteRepository implements HideRepository on the journal database
type SQLiteRepository struct {
	db          *sql.DB
	q           dbtx
	tx          *sql.Tx // set on repositories handed to WithTransaction callbacks
	retryConfig *repoerrors.RetryConfig
	logger      logging.Logger
}

var _ HideRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a repository on a connected database service
func NewSQLiteRepository(dbService database.Service, logger logging.Logger) *SQLiteRepository {
	return NewSQLiteRepositoryWithConfig(dbService, nil, logger)
}

// NewSQLiteRepositoryWithConfig is NewSQLiteRepository with a custom retry policy
func NewSQLiteRepositoryWithConfig(dbService database.Service, retryConfig *repoerrors.RetryConfig, logger logging.Logger) *SQLiteRepository {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if retryConfig == nil {
		retryConfig = repoerrors.DefaultRetryConfig()
	}
	if retryConfig.Logger == nil {
		retryConfig.Logger = repoerrors.NewLoggerBridge(logger)
	}

	db := dbService.DB()
	return &SQLiteRepository{
		db:          db,
		q:           db,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

func validateHideEvent(e types.HideEvent) error {
	switch {
	case e.SessionID == "":
		return repoerrors.HandleValidationError("SaveHideEvents", "session_id", "", "session id is required")
	case e.Title == "":
		return repoerrors.HandleValidationError("SaveHideEvents", "title", "", "title is required")
	case !e.Source.Valid():
		return repoerrors.HandleValidationError("SaveHideEvents", "source", string(e.Source), "unknown hide source")
	case e.HiddenAt.IsZero():
		return repoerrors.HandleValidationError("SaveHideEvents", "hidden_at", "", "hide time is required")
	}
	return nil
}

// SaveHideEvents inserts events in one transaction; an empty slice is a no-op
func (r *SQLiteRepository) SaveHideEvents(ctx context.Context, events []types.HideEvent) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if err := validateHideEvent(e); err != nil {
			return err
		}
	}

	start := time.Now()
	err := r.WithTransaction(ctx, func(repo HideRepository) error {
		return repo.(*SQLiteRepository).insertHideEvents(ctx, events)
	})
	if err != nil {
		return err
	}

	logging.LogOperation(r.logger, "SaveHideEvents", time.Since(start), map[string]interface{}{
		"events": len(events),
	})
	return nil
}

func (r *SQLiteRepository) insertHideEvents(ctx context.Context, events []types.HideEvent) error {
	stmt, err := r.q.PrepareContext(ctx, insertHideEventSQL)
	if err != nil {
		return repoerrors.WrapDatabaseError("SaveHideEvents.Prepare", err)
	}
	defer stmt.Close()

	for i, e := range events {
		_, err := stmt.ExecContext(ctx, e.SessionID, e.Title, int64(e.Handle), string(e.Source), e.HiddenAt.UTC().UnixMilli())
		if err != nil {
			return repoerrors.WrapDatabaseErrorWithContext("SaveHideEvents.Insert", err, map[string]string{
				"index":      fmt.Sprintf("%d", i),
				"session_id": e.SessionID,
			})
		}
	}
	return nil
}

func (r *SQLiteRepository) CountHides(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, countHidesSQL).Scan(&n); err != nil {
		return 0, repoerrors.WrapDatabaseError("CountHides", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountHidesForSession(ctx context.Context, sessionID string) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, countHidesForSessionSQL, sessionID).Scan(&n); err != nil {
		return 0, repoerrors.WrapDatabaseErrorWithContext("CountHidesForSession", err, map[string]string{
			"session_id": sessionID,
		})
	}
	return n, nil
}

func (r *SQLiteRepository) LastHide(ctx context.Context) (*types.HideEvent, error) {
	var (
		e        types.HideEvent
		handle   int64
		source   string
		hiddenAt int64
	)
	err := r.q.QueryRowContext(ctx, lastHideSQL).Scan(&e.ID, &e.SessionID, &e.Title, &handle, &source, &hiddenAt)
	if err != nil {
		return nil, repoerrors.WrapDatabaseError("LastHide", err)
	}

	e.Handle = uint64(handle)
	e.Source = types.HideSource(source)
	e.HiddenAt = time.UnixMilli(hiddenAt).UTC()
	return &e, nil
}

// GetStats gathers counts for sessionID and the whole journal
func (r *SQLiteRepository) GetStats(ctx context.Context, sessionID string) (*types.JournalStats, error) {
	stats := &types.JournalStats{SessionID: sessionID}

	var err error
	if stats.TotalHides, err = r.CountHides(ctx); err != nil {
		return nil, err
	}
	if sessionID != "" {
		if stats.SessionHides, err = r.CountHidesForSession(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	last, err := r.LastHide(ctx)
	switch {
	case err == nil:
		stats.LastHide = last
	case repoerrors.IsNotFound(err):
	default:
		return nil, err
	}
	return stats, nil
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		res, err := r.q.ExecContext(ctx, deleteOlderThanSQL, cutoff.UTC().UnixMilli())
		if err != nil {
			return repoerrors.WrapDatabaseError("DeleteOlderThan", err)
		}
		if deleted, err = res.RowsAffected(); err != nil {
			return repoerrors.WrapDatabaseError("DeleteOlderThan.RowsAffected", err)
		}
		return nil
	}, "DeleteOlderThan")
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		r.logger.Info("Deleted old hide events", "count", deleted, "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return deleted, nil
}

// WithTransaction runs fn in a transaction, retrying the whole transaction on retryable errors.
// Called on a repository that is already inside a transaction, fn joins it.
func (r *SQLiteRepository) WithTransaction(ctx context.Context, fn func(repo HideRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if r.db == nil {
		return repoerrors.HandleConnectionError("WithTransaction", "database not connected")
	}

	start := time.Now()
	err := repoerrors.WithRetryContext(ctx, r.retryConfig, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return repoerrors.NewRepositoryError("WithTransaction.Begin", err, repoerrors.ClassifyError(err))
		}

		committed := false
		defer func() {
			if committed {
				return
			}
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Debug("Failed to rollback transaction", "rollback_error", rbErr)
			}
		}()

		txRepo := &SQLiteRepository{
			db:          r.db,
			q:           tx,
			tx:          tx,
			retryConfig: r.retryConfig,
			logger:      r.logger,
		}
		if err := fn(txRepo); err != nil {
			r.logger.Debug("Transaction function failed", "error", err)
			return err
		}

		if err := tx.Commit(); err != nil {
			repoErr := repoerrors.NewRepositoryError("WithTransaction.Commit", err, repoerrors.ClassifyError(err))
			if !repoErr.IsRetryable() {
				logging.LogError(r.logger, repoErr, "WithTransaction.Commit", nil)
			}
			return repoErr
		}
		committed = true
		return nil
	}, "WithTransaction")

	if err == nil {
		logging.LogOperation(r.logger, "WithTransaction", time.Since(start), nil)
	}
	return err
}
