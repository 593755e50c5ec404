//go:build !windows && !linux && !darwin

package autostart

import "errors"

// New returns the Store for this OS
func New(appName string) (Store, error) {
	return nil, errors.New("autostart: not supported on this OS")
}
