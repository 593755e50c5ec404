package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"
)

// launchAgent is the launchd job written to ~/Library/LaunchAgents
type launchAgent struct {
	Label            string   `plist:"Label"`
	ProgramArguments []string `plist:"ProgramArguments"`
	RunAtLoad        bool     `plist:"RunAtLoad"`
	KeepAlive        bool     `plist:"KeepAlive"`
}

// LaunchAgentStore manages a launchd agent plist with RunAtLoad set
type LaunchAgentStore struct {
	dir   string
	label string
}

// NewLaunchAgentStore returns a store writing <label>.plist into dir
func NewLaunchAgentStore(dir, label string) *LaunchAgentStore {
	return &LaunchAgentStore{dir: dir, label: label}
}

func (s *LaunchAgentStore) path() string {
	return filepath.Join(s.dir, s.label+".plist")
}

// IsEnabled reports whether a readable plist with our label exists
func (s *LaunchAgentStore) IsEnabled() (bool, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("autostart: read launch agent: %w", err)
	}

	var agent launchAgent
	if _, err := plist.Unmarshal(data, &agent); err != nil {
		return false, fmt.Errorf("autostart: parse launch agent: %w", err)
	}
	return agent.Label == s.label, nil
}

func (s *LaunchAgentStore) Enable(execPath string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("autostart: create %s: %w", s.dir, err)
	}

	data, err := plist.MarshalIndent(launchAgent{
		Label:            s.label,
		ProgramArguments: []string{execPath},
		RunAtLoad:        true,
	}, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("autostart: encode launch agent: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o644); err != nil {
		return fmt.Errorf("autostart: write launch agent: %w", err)
	}
	return nil
}

func (s *LaunchAgentStore) Disable() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("autostart: remove launch agent: %w", err)
	}
	return nil
}
