package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the SQLite connection options for the journal
type Config struct {
	Path            string // database file path, or ":memory:"
	JournalMode     string // DELETE, TRUNCATE, PERSIST, MEMORY, WAL, OFF
	SynchronousMode string // OFF, NORMAL, FULL, EXTRA
	BusyTimeout     int    // milliseconds
	CacheSize       int    // KB
	ForeignKeys     bool
}

// DefaultConfig returns the options used for the on-disk journal at path
func DefaultConfig(path string) *Config {
	return &Config{
		Path:            path,
		JournalMode:     "WAL",
		SynchronousMode: "NORMAL",
		BusyTimeout:     5000,
		CacheSize:       512,
		ForeignKeys:     true,
	}
}

// TestConfig returns an in-memory configuration
func TestConfig() *Config {
	config := DefaultConfig(":memory:")
	// WAL is meaningless for in-memory databases
	config.JournalMode = "MEMORY"
	config.SynchronousMode = "OFF"
	config.BusyTimeout = 1000
	return config
}

var (
	validJournalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	validSyncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Validate checks the options and creates the parent directory of a file database
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	journalMode := strings.ToUpper(c.JournalMode)
	if !validJournalModes[journalMode] {
		return fmt.Errorf("invalid journalMode: %s", c.JournalMode)
	}
	if c.IsInMemory() && journalMode == "WAL" {
		return fmt.Errorf("journalMode cannot be WAL when using in-memory database")
	}
	if !validSyncModes[strings.ToUpper(c.SynchronousMode)] {
		return fmt.Errorf("invalid synchronousMode: %s", c.SynchronousMode)
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("busyTimeout cannot be negative, got %d", c.BusyTimeout)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cacheSize must be positive, got %d", c.CacheSize)
	}

	if !c.IsInMemory() {
		if dir := filepath.Dir(c.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// GetConnectionString builds the go-sqlite3 DSN with pragmas as query parameters
func (c *Config) GetConnectionString() string {
	values := url.Values{}
	if c.ForeignKeys {
		values.Set("_foreign_keys", "on")
	} else {
		values.Set("_foreign_keys", "off")
	}
	values.Set("_journal_mode", c.JournalMode)
	values.Set("_synchronous", c.SynchronousMode)
	// negative cache size is read by SQLite as KB
	values.Set("_cache_size", strconv.Itoa(-c.CacheSize))
	values.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout))

	// only characters that would break query parsing are escaped in the path
	path := strings.NewReplacer("?", "%3F", "&", "%26").Replace(c.Path)
	return path + "?" + values.Encode()
}

// IsInMemory returns true if the database lives only in memory
func (c *Config) IsInMemory() bool {
	return c.Path == ":memory:"
}
