//go:build linux

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
)

// New returns the Store for this OS
func New(appName string) (Store, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("autostart: resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return NewDesktopEntryStore(filepath.Join(dir, "autostart"), appName), nil
}
