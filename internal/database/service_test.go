package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dberrors "icloudmonkey/internal/infrastructure/errors"
	"icloudmonkey/internal/testutils"
)

func connectTest(t *testing.T, config *Config) *SQLiteService {
	t.Helper()

	service := NewSQLiteService(&testutils.RecordingLogger{})
	if err := service.Connect(context.Background(), config); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service
}

func TestSQLiteService_ConnectFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "journal.db")
	service := connectTest(t, DefaultConfig(dbPath))

	if err := service.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file was not created: %v", err)
	}
	if service.DB().Stats().MaxOpenConnections != 2 {
		t.Errorf("Expected WAL pool of 2, got %d", service.DB().Stats().MaxOpenConnections)
	}
}

func TestSQLiteService_ConnectInMemory(t *testing.T) {
	service := connectTest(t, TestConfig())

	if service.DB().Stats().MaxOpenConnections != 1 {
		t.Errorf("in-memory database must use a single connection, got %d", service.DB().Stats().MaxOpenConnections)
	}
}

func TestSQLiteService_ConnectInvalidConfig(t *testing.T) {
	service := NewSQLiteService(nil)

	err := service.Connect(context.Background(), &Config{})
	if !dberrors.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if err := service.Connect(context.Background(), nil); !dberrors.IsValidation(err) {
		t.Errorf("Expected validation error for nil config, got %v", err)
	}
}

func TestSQLiteService_Reconnect(t *testing.T) {
	service := connectTest(t, TestConfig())
	first := service.DB()

	if err := service.Connect(context.Background(), TestConfig()); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	if service.DB() == first {
		t.Error("Expected a new connection after reconnect")
	}
	if err := first.Ping(); err == nil {
		t.Error("Expected the previous connection to be closed")
	}
}

func TestSQLiteService_Migrate(t *testing.T) {
	ctx := context.Background()
	service := connectTest(t, TestConfig())

	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var n int
	if err := service.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM hide_events").Scan(&n); err != nil {
		t.Fatalf("hide_events table was not created: %v", err)
	}

	version, err := service.GetMigrationVersion(ctx)
	if err != nil {
		t.Fatalf("GetMigrationVersion() error = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	// running again is a no-op
	if err := service.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestSQLiteService_SourceCheckConstraint(t *testing.T) {
	ctx := context.Background()
	service := connectTest(t, TestConfig())
	if err := service.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := service.DB().ExecContext(ctx,
		"INSERT INTO hide_events (session_id, title, handle, source, hidden_at) VALUES ('s', 'iCloud', 1, 'guess', 0)")
	if !dberrors.IsConstraint(dberrors.WrapDatabaseError("insert", err)) {
		t.Errorf("Expected CHECK constraint error, got %v", err)
	}
}

func TestSQLiteService_NotConnected(t *testing.T) {
	ctx := context.Background()
	service := NewSQLiteService(&testutils.RecordingLogger{})

	if err := service.Health(ctx); !dberrors.IsConnection(err) {
		t.Errorf("Health() error = %v, want connection error", err)
	}
	if err := service.Migrate(ctx); !dberrors.IsConnection(err) {
		t.Errorf("Migrate() error = %v, want connection error", err)
	}
	if _, err := service.GetMigrationVersion(ctx); !dberrors.IsConnection(err) {
		t.Errorf("GetMigrationVersion() error = %v, want connection error", err)
	}
	if err := service.Close(); err != nil {
		t.Errorf("Close() on unconnected service: %v", err)
	}
}

func TestSQLiteService_CloseTwice(t *testing.T) {
	service := NewSQLiteService(&testutils.RecordingLogger{})
	if err := service.Connect(context.Background(), TestConfig()); err != nil {
		t.Fatal(err)
	}

	if err := service.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := service.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if service.DB() != nil {
		t.Error("DB() should be nil after Close")
	}
}
