//go:build darwin

package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// New returns the Store for this OS
func New(appName string) (Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("autostart: resolve home dir: %w", err)
	}
	label := "com." + strings.ToLower(appName)
	return NewLaunchAgentStore(filepath.Join(home, "Library", "LaunchAgents"), label), nil
}
