package app

import (
	"context"
	"fmt"
	"time"

	"icloudmonkey/internal/config"
	"icloudmonkey/internal/database"
	"icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/repository"
	"icloudmonkey/internal/services"
)

const (
	journalOpenTimeout = 10 * time.Second
	closeTimeout       = 5 * time.Second
)

// OpenJournal connects to the journal database, migrates it and prunes entries
// older than the retention window.
func OpenJournal(ctx context.Context, cfg *config.Config, logger logging.Logger) (*services.HideJournal, database.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, journalOpenTimeout)
	defer cancel()

	dbConfig := database.DefaultConfig(cfg.JournalPath())
	dbService := database.NewSQLiteService(logger)
	if err := dbService.Connect(ctx, dbConfig); err != nil {
		return nil, nil, err
	}

	if err := dbService.Migrate(ctx); err != nil {
		dbService.Close()
		return nil, nil, errors.NewRepositoryErrorWithContext("OpenJournal",
			err,
			errors.ClassifyError(err),
			map[string]string{
				"operation": "migrate",
				"db_path":   dbConfig.Path,
			})
	}

	repo := repository.NewSQLiteRepository(dbService, logger)
	journal := services.NewHideJournal(repo, cfg.Journal.FlushInterval.Std(), logger)

	if cfg.Journal.RetentionDays > 0 {
		if _, err := journal.CleanupOldData(ctx, cfg.Journal.RetentionDays); err != nil {
			logging.LogError(logger, err, "OpenJournal.Cleanup", map[string]interface{}{
				"retention_days": cfg.Journal.RetentionDays,
			})
		}
	}

	logger.Info("Hide journal opened", "path", dbConfig.Path, "session_id", journal.SessionID())
	return journal, dbService, nil
}

// journalFailureReason names the likely cause of a failed OpenJournal
func journalFailureReason(err error) string {
	switch {
	case errors.IsBusy(err):
		return "database is locked by another process"
	case errors.IsTimeout(err):
		return "database did not answer in time"
	case errors.IsConnection(err):
		return "database file cannot be opened"
	case errors.IsSchema(err):
		return "database schema could not be migrated"
	default:
		return "unexpected database error"
	}
}

// closeDatabase closes the journal database, giving up after ctx expires
func closeDatabase(ctx context.Context, dbService database.Service) error {
	if dbService == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- dbService.Close() }()

	select {
	case err := <-done:
		if err != nil {
			return errors.NewRepositoryErrorWithContext("shutdown",
				err,
				errors.ClassifyError(err),
				map[string]string{"operation": "close_connection"})
		}
		return nil
	case <-ctx.Done():
		return errors.NewRepositoryError("shutdown", fmt.Errorf("close database: %w", ctx.Err()), errors.ErrCodeTimeout)
	}
}
