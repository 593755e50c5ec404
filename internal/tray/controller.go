// Package tray owns the notification-area icon and routes its menu clicks.
package tray

import (
	"icloudmonkey/internal/autostart"
	"icloudmonkey/internal/infrastructure/logging"
)

// Menu labels
const (
	LabelPause     = "Pause"
	LabelResume    = "Resume"
	LabelAutoStart = "Auto Start"
	LabelInfo      = "Info"
	LabelExit      = "Exit"
)

// Monitor is the part of the window monitor the tray drives
type Monitor interface {
	Toggle() bool
	Running() bool
}

// InfoPresenter shows the info splash
type InfoPresenter interface {
	ShowInfo()
}

// PauseLabel is the Pause/Resume item title for a monitoring state
func PauseLabel(running bool) string {
	if running {
		return LabelPause
	}
	return LabelResume
}

// Controller holds the menu actions independently of the tray library
type Controller struct {
	appName   string
	monitor   Monitor
	autostart autostart.Store
	execPath  string
	info      InfoPresenter
	quit      func()
	logger    logging.Logger
}

// NewController wires menu actions. quit is called once when Exit is chosen.
func NewController(appName string, monitor Monitor, store autostart.Store, execPath string, info InfoPresenter, quit func(), logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if quit == nil {
		quit = func() {}
	}
	return &Controller{
		appName:   appName,
		monitor:   monitor,
		autostart: store,
		execPath:  execPath,
		info:      info,
		quit:      quit,
		logger:    logger,
	}
}

// Tooltip is the tray icon tooltip
func (c *Controller) Tooltip() string {
	return c.appName
}

// PauseLabel reflects the current monitoring state
func (c *Controller) PauseLabel() string {
	return PauseLabel(c.monitor.Running())
}

// TogglePause flips monitoring and returns the label to show next
func (c *Controller) TogglePause() string {
	running := c.monitor.Toggle()
	c.logger.Debug("Tray toggled monitoring", "running", running)
	return PauseLabel(running)
}

// AutostartChecked reads the registration; read failures show as unchecked
func (c *Controller) AutostartChecked() bool {
	if c.autostart == nil {
		return false
	}
	enabled, err := c.autostart.IsEnabled()
	if err != nil {
		c.logger.Warn("Failed to read autostart registration", "error", err)
		return false
	}
	return enabled
}

// ToggleAutostart flips the registration and returns the state read back afterwards
func (c *Controller) ToggleAutostart() bool {
	if c.autostart == nil {
		return false
	}
	enabled, err := autostart.Toggle(c.autostart, c.execPath)
	if err != nil {
		c.logger.Warn("Failed to change autostart registration", "error", err)
		return c.AutostartChecked()
	}
	c.logger.Info("Autostart changed", "enabled", enabled)
	return enabled
}

// ShowInfo opens the info splash
func (c *Controller) ShowInfo() {
	if c.info == nil {
		return
	}
	c.info.ShowInfo()
}

// Exit ends the application
func (c *Controller) Exit() {
	c.logger.Info("Exit requested from tray")
	c.quit()
}
