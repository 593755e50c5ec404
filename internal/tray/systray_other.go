//go:build !windows

package tray

import "sync"

// Tray is a no-op on platforms without a tray backend
type Tray struct {
	ctrl     *Controller
	quit     chan struct{}
	quitOnce sync.Once
}

// New returns a Tray that only logs that no tray is available
func New(ctrl *Controller) *Tray {
	return &Tray{ctrl: ctrl, quit: make(chan struct{})}
}

// Run blocks until Quit
func (t *Tray) Run() {
	t.ctrl.logger.Warn("System tray is not available on this OS")
	<-t.quit
}

// Quit unblocks Run; it is safe to call more than once
func (t *Tray) Quit() {
	t.quitOnce.Do(func() { close(t.quit) })
}
