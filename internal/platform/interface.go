package platform

import (
	"context"
	"errors"
)

// Handle is a native top-level window handle. Zero means "no window".
type Handle uintptr

// WindowAPI defines the window operations the monitor needs
type WindowAPI interface {
	// FindWindow returns the top-level window whose title equals title exactly, or 0
	FindWindow(title string) Handle
	IsVisible(h Handle) bool
	IsMinimized(h Handle) bool
	// Hide hides the window; it fails only if h is not a live window
	Hide(h Handle) error
}

// WindowListener is notified when a top-level window appears
type WindowListener interface {
	OnWindowOpened(name string, h Handle)
}

// EventSource delivers desktop-wide "window appeared" notifications.
// Notifications arrive on a goroutine owned by the source.
type EventSource interface {
	// Start subscribes and returns once the subscription is live.
	// The subscription is released when ctx is done or Stop is called.
	Start(ctx context.Context, listener WindowListener) error
	Stop() error
}

// ErrUnsupported is returned by backends that cannot observe windows on this OS
var ErrUnsupported = errors.New("platform: window events are not supported on this OS")
