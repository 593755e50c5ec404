// Package autostart registers the executable to run when the user logs in.
//
// Each backend keeps exactly one entry named after the application. Enable and
// Disable are idempotent and Disable on a missing entry is not an error.
package autostart

import "fmt"

// Store is the per-user run-on-login registration
type Store interface {
	IsEnabled() (bool, error)
	Enable(execPath string) error
	Disable() error
}

// Toggle flips the registration and returns the state read back afterwards
func Toggle(store Store, execPath string) (bool, error) {
	enabled, err := store.IsEnabled()
	if err != nil {
		return false, fmt.Errorf("read autostart state: %w", err)
	}

	if enabled {
		err = store.Disable()
	} else {
		err = store.Enable(execPath)
	}
	if err != nil {
		return enabled, err
	}

	return store.IsEnabled()
}
