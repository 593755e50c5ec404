//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// RunKeyPath is the per-user run-on-login key under HKEY_CURRENT_USER
const RunKeyPath = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`

// RegistryStore keeps one string value under a Run key; its data is the executable path
type RegistryStore struct {
	root      registry.Key
	keyPath   string
	valueName string
}

// NewRegistryStore returns a store for HKCU\...\Run\<valueName>
func NewRegistryStore(valueName string) *RegistryStore {
	return &RegistryStore{root: registry.CURRENT_USER, keyPath: RunKeyPath, valueName: valueName}
}

// New returns the Store for this OS
func New(appName string) (Store, error) {
	return NewRegistryStore(appName), nil
}

func (s *RegistryStore) IsEnabled() (bool, error) {
	k, err := registry.OpenKey(s.root, s.keyPath, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("autostart: open run key: %w", err)
	}
	defer k.Close()

	if _, _, err := k.GetValue(s.valueName, nil); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("autostart: query %s: %w", s.valueName, err)
	}
	return true, nil
}

func (s *RegistryStore) Enable(execPath string) error {
	k, _, err := registry.CreateKey(s.root, s.keyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("autostart: open run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(s.valueName, execPath); err != nil {
		return fmt.Errorf("autostart: set %s: %w", s.valueName, err)
	}
	return nil
}

func (s *RegistryStore) Disable() error {
	k, err := registry.OpenKey(s.root, s.keyPath, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("autostart: open run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(s.valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("autostart: delete %s: %w", s.valueName, err)
	}
	return nil
}
