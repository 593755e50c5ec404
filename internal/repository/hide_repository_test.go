package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"icloudmonkey/internal/database"
	repoerrors "icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/types"
)

func setupTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	dbService := database.NewSQLiteService(logging.NopLogger{})
	if err := dbService.Connect(ctx, database.TestConfig()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { dbService.Close() })

	if err := dbService.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	retry := repoerrors.DefaultRetryConfig()
	retry.InitialDelay = time.Millisecond
	retry.MaxDelay = 5 * time.Millisecond
	return NewSQLiteRepositoryWithConfig(dbService, retry, logging.NopLogger{})
}

func hideAt(session string, source types.HideSource, at time.Time) types.HideEvent {
	return types.HideEvent{
		SessionID: session,
		Title:     "iCloud",
		Handle:    0x1234,
		Source:    source,
		HiddenAt:  at,
	}
}

func TestSQLiteRepository_SaveAndCount(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	events := []types.HideEvent{
		hideAt("session-a", types.SourceInitialCheck, now.Add(-2*time.Minute)),
		hideAt("session-a", types.SourceEvent, now.Add(-time.Minute)),
		hideAt("session-b", types.SourceEvent, now),
	}
	if err := repo.SaveHideEvents(ctx, events); err != nil {
		t.Fatalf("SaveHideEvents() error = %v", err)
	}

	total, err := repo.CountHides(ctx)
	if err != nil {
		t.Fatalf("CountHides() error = %v", err)
	}
	if total != 3 {
		t.Errorf("CountHides() = %d, want 3", total)
	}

	tests := []struct {
		session string
		want    int64
	}{
		{"session-a", 2},
		{"session-b", 1},
		{"session-c", 0},
	}
	for _, tt := range tests {
		t.Run(tt.session, func(t *testing.T) {
			got, err := repo.CountHidesForSession(ctx, tt.session)
			if err != nil {
				t.Fatalf("CountHidesForSession() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountHidesForSession(%q) = %d, want %d", tt.session, got, tt.want)
			}
		})
	}
}

func TestSQLiteRepository_SaveEmptyIsNoop(t *testing.T) {
	repo := setupTestRepository(t)

	if err := repo.SaveHideEvents(context.Background(), nil); err != nil {
		t.Fatalf("SaveHideEvents(nil) error = %v", err)
	}
}

func TestSQLiteRepository_SaveValidation(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name  string
		event types.HideEvent
	}{
		{"missing session", types.HideEvent{Title: "iCloud", Source: types.SourceEvent, HiddenAt: now}},
		{"missing title", types.HideEvent{SessionID: "s", Source: types.SourceEvent, HiddenAt: now}},
		{"bad source", types.HideEvent{SessionID: "s", Title: "iCloud", Source: "timer", HiddenAt: now}},
		{"zero time", types.HideEvent{SessionID: "s", Title: "iCloud", Source: types.SourceEvent}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.SaveHideEvents(ctx, []types.HideEvent{tt.event})
			if !repoerrors.IsValidation(err) {
				t.Errorf("SaveHideEvents() error = %v, want validation error", err)
			}
		})
	}

	total, _ := repo.CountHides(ctx)
	if total != 0 {
		t.Errorf("CountHides() after rejected saves = %d, want 0", total)
	}
}

func TestSQLiteRepository_SaveIsAtomic(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	good := hideAt("s", types.SourceEvent, now)
	bad := good
	bad.Title = ""

	err := repo.SaveHideEvents(ctx, []types.HideEvent{good, bad})
	if err == nil {
		t.Fatal("SaveHideEvents() expected error for invalid second event")
	}

	total, _ := repo.CountHides(ctx)
	if total != 0 {
		t.Errorf("CountHides() = %d, want 0 after failed batch", total)
	}
}

func TestSQLiteRepository_LastHide(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	_, err := repo.LastHide(ctx)
	if !repoerrors.IsNotFound(err) {
		t.Fatalf("LastHide() on empty journal error = %v, want not found", err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []types.HideEvent{
		hideAt("s", types.SourceEvent, base),
		hideAt("s", types.SourceInitialCheck, base.Add(time.Hour)),
		hideAt("s", types.SourceEvent, base.Add(30*time.Minute)),
	}
	events[1].Handle = 0xBEEF
	if err := repo.SaveHideEvents(ctx, events); err != nil {
		t.Fatalf("SaveHideEvents() error = %v", err)
	}

	last, err := repo.LastHide(ctx)
	if err != nil {
		t.Fatalf("LastHide() error = %v", err)
	}
	if !last.HiddenAt.Equal(base.Add(time.Hour)) {
		t.Errorf("LastHide().HiddenAt = %v, want %v", last.HiddenAt, base.Add(time.Hour))
	}
	if last.Handle != 0xBEEF {
		t.Errorf("LastHide().Handle = %#x, want 0xbeef", last.Handle)
	}
	if last.Source != types.SourceInitialCheck {
		t.Errorf("LastHide().Source = %q, want %q", last.Source, types.SourceInitialCheck)
	}
	if last.ID == 0 {
		t.Error("LastHide().ID should be set")
	}
}

func TestSQLiteRepository_GetStats(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()

	stats, err := repo.GetStats(ctx, "current")
	if err != nil {
		t.Fatalf("GetStats() on empty journal error = %v", err)
	}
	if stats.TotalHides != 0 || stats.SessionHides != 0 || stats.LastHide != nil {
		t.Errorf("GetStats() on empty journal = %+v", stats)
	}

	now := time.Now()
	events := []types.HideEvent{
		hideAt("previous", types.SourceEvent, now.Add(-time.Hour)),
		hideAt("current", types.SourceEvent, now),
	}
	if err := repo.SaveHideEvents(ctx, events); err != nil {
		t.Fatalf("SaveHideEvents() error = %v", err)
	}

	stats, err = repo.GetStats(ctx, "current")
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.SessionID != "current" {
		t.Errorf("SessionID = %q, want current", stats.SessionID)
	}
	if stats.SessionHides != 1 {
		t.Errorf("SessionHides = %d, want 1", stats.SessionHides)
	}
	if stats.TotalHides != 2 {
		t.Errorf("TotalHides = %d, want 2", stats.TotalHides)
	}
	if stats.LastHide == nil || stats.LastHide.SessionID != "current" {
		t.Errorf("LastHide = %+v, want event from current session", stats.LastHide)
	}
}

func TestSQLiteRepository_DeleteOlderThan(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	events := []types.HideEvent{
		hideAt("s", types.SourceEvent, now.AddDate(0, 0, -100)),
		hideAt("s", types.SourceEvent, now.AddDate(0, 0, -91)),
		hideAt("s", types.SourceEvent, now.AddDate(0, 0, -1)),
	}
	if err := repo.SaveHideEvents(ctx, events); err != nil {
		t.Fatalf("SaveHideEvents() error = %v", err)
	}

	deleted, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("DeleteOlderThan() = %d, want 2", deleted)
	}

	deleted, err = repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("second DeleteOlderThan() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("second DeleteOlderThan() = %d, want 0", deleted)
	}

	total, _ := repo.CountHides(ctx)
	if total != 1 {
		t.Errorf("CountHides() = %d, want 1", total)
	}
}

func TestSQLiteRepository_WithTransaction(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	t.Run("commit", func(t *testing.T) {
		err := repo.WithTransaction(ctx, func(tx HideRepository) error {
			if err := tx.SaveHideEvents(ctx, []types.HideEvent{hideAt("tx", types.SourceEvent, now)}); err != nil {
				return err
			}
			n, err := tx.CountHidesForSession(ctx, "tx")
			if err != nil {
				return err
			}
			if n != 1 {
				t.Errorf("count inside transaction = %d, want 1", n)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("WithTransaction() error = %v", err)
		}

		n, _ := repo.CountHidesForSession(ctx, "tx")
		if n != 1 {
			t.Errorf("count after commit = %d, want 1", n)
		}
	})

	t.Run("rollback", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := repo.WithTransaction(ctx, func(tx HideRepository) error {
			if err := tx.SaveHideEvents(ctx, []types.HideEvent{hideAt("rolled", types.SourceEvent, now)}); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("WithTransaction() error = %v, want sentinel", err)
		}

		n, _ := repo.CountHidesForSession(ctx, "rolled")
		if n != 0 {
			t.Errorf("count after rollback = %d, want 0", n)
		}
	})
}
