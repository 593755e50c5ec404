// Package monitor hides the window whose title matches the target title.
//
// A Monitor is driven from two goroutines: the OS event hook delivers
// OnWindowOpened and the tray delivers Pause/Resume. The running flag and the
// counter live under mu; OS hide calls are serialized under hideMu and never
// hold mu, so the tray stays responsive while a hide is in progress.
package monitor

import (
	"sync"

	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/platform"
	"icloudmonkey/internal/types"
)

// HideRecorder is told about every successful hide.
// RecordHide is called after the counter is updated, outside the state lock,
// and should return quickly.
type HideRecorder interface {
	RecordHide(title string, h platform.Handle, source types.HideSource)
}

// Monitor owns the monitoring state and the action counter
type Monitor struct {
	mu          sync.Mutex
	hideMu      sync.Mutex
	title       string
	running     bool
	actionCount uint64

	windows  platform.WindowAPI
	recorder HideRecorder
	logger   logging.Logger
}

// Option configures a Monitor
type Option func(*Monitor)

// WithRecorder sets a recorder notified after each hide
func WithRecorder(r HideRecorder) Option {
	return func(m *Monitor) { m.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// New creates a running Monitor for the exact window title
func New(title string, windows platform.WindowAPI, opts ...Option) *Monitor {
	m := &Monitor{
		title:   title,
		running: true,
		windows: windows,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.NewDefaultLogger()
	}
	return m
}

// OnWindowOpened implements platform.WindowListener
func (m *Monitor) OnWindowOpened(name string, h platform.Handle) {
	if name != m.title || h == 0 || !m.Running() {
		return
	}
	m.hide(h, types.SourceEvent)
}

// InitialCheck hides the target window if it already exists, is visible and is not minimized.
// It reports whether a window was hidden.
func (m *Monitor) InitialCheck() bool {
	h := m.windows.FindWindow(m.title)
	if h == 0 {
		m.logger.Debug("Target window not present", "title", m.title)
		return false
	}
	if !m.windows.IsVisible(h) || m.windows.IsMinimized(h) {
		m.logger.Debug("Target window present but not shown", "title", m.title, "handle", uintptr(h))
		return false
	}
	return m.hide(h, types.SourceInitialCheck)
}

// hide runs the OS call under hideMu only, so Pause and Running never wait on the OS.
func (m *Monitor) hide(h platform.Handle, source types.HideSource) bool {
	m.hideMu.Lock()
	defer m.hideMu.Unlock()

	if err := m.windows.Hide(h); err != nil {
		m.logger.Warn("Failed to hide window", "title", m.title, "handle", uintptr(h), "source", string(source), "error", err)
		return false
	}

	m.mu.Lock()
	m.actionCount++
	count := m.actionCount
	m.mu.Unlock()

	m.logger.Info("Window hidden", "title", m.title, "handle", uintptr(h), "source", string(source), "action_count", count)

	if m.recorder != nil {
		m.recorder.RecordHide(m.title, h, source)
	}
	return true
}

// Pause stops reacting to window notifications. A hide already in flight completes.
func (m *Monitor) Pause() {
	m.setRunning(false)
}

// Resume restarts monitoring. Entering the running state runs InitialCheck at once;
// resuming while already running does nothing.
func (m *Monitor) Resume() {
	if m.setRunning(true) {
		m.InitialCheck()
	}
}

// Toggle flips between running and paused and returns the new running state
func (m *Monitor) Toggle() bool {
	m.mu.Lock()
	running := !m.running
	m.setRunningLocked(running)
	m.mu.Unlock()

	if running {
		m.InitialCheck()
	}
	return running
}

// setRunning stores the state and reports whether it changed
func (m *Monitor) setRunning(running bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setRunningLocked(running)
}

func (m *Monitor) setRunningLocked(running bool) bool {
	if m.running == running {
		return false
	}
	m.running = running
	if running {
		m.logger.Info("Monitoring resumed")
	} else {
		m.logger.Info("Monitoring paused")
	}
	return true
}

// Running reports whether the monitor reacts to notifications
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// ActionCount is the number of windows hidden since start
func (m *Monitor) ActionCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.actionCount
}

// TargetTitle is the exact window title the monitor hides
func (m *Monitor) TargetTitle() string {
	return m.title
}
