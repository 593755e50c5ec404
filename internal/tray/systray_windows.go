//go:build windows

package tray

import (
	_ "embed"

	"github.com/getlantern/systray"
)

//go:embed icon.ico
var iconData []byte

// Tray shows the notification-area icon for a Controller
type Tray struct {
	ctrl      *Controller
	pause     *systray.MenuItem
	autoStart *systray.MenuItem
	info      *systray.MenuItem
	exit      *systray.MenuItem
}

// New creates a tray for ctrl; call Run to show it
func New(ctrl *Controller) *Tray {
	return &Tray{ctrl: ctrl}
}

// Run shows the icon and blocks until Quit. The library opens the menu on
// both left and right click.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the icon and makes Run return
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(iconData)
	systray.SetTooltip(t.ctrl.Tooltip())

	t.pause = systray.AddMenuItem(t.ctrl.PauseLabel(), "Pause or resume hiding")
	t.autoStart = systray.AddMenuItemCheckbox(LabelAutoStart, "Start when you sign in", t.ctrl.AutostartChecked())
	t.info = systray.AddMenuItem(LabelInfo, "Show hide count")
	systray.AddSeparator()
	t.exit = systray.AddMenuItem(LabelExit, "Quit")

	t.ctrl.logger.Debug("Tray ready")
	go t.handleMenuEvents()
}

func (t *Tray) onExit() {
	t.ctrl.logger.Debug("Tray exited")
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.pause.ClickedCh:
			t.pause.SetTitle(t.ctrl.TogglePause())

		case <-t.autoStart.ClickedCh:
			if t.ctrl.ToggleAutostart() {
				t.autoStart.Check()
			} else {
				t.autoStart.Uncheck()
			}

		case <-t.info.ClickedCh:
			t.ctrl.ShowInfo()

		case <-t.exit.ClickedCh:
			t.ctrl.Exit()
			systray.Quit()
			return
		}
	}
}
