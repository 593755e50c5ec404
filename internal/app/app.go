package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"icloudmonkey/internal/autostart"
	"icloudmonkey/internal/config"
	"icloudmonkey/internal/database"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/monitor"
	"icloudmonkey/internal/platform"
	"icloudmonkey/internal/services"
	"icloudmonkey/internal/tray"
	"icloudmonkey/internal/types"
	"icloudmonkey/internal/version"
)

// SplashEvent is emitted to the frontend with a types.SplashInfo payload
const SplashEvent = "splash:show"

// TrayRunner shows the tray icon until Quit
type TrayRunner interface {
	Run()
	Quit()
}

// Options replaces the OS-backed collaborators, mostly for tests.
// Nil fields get the platform defaults.
type Options struct {
	Windows   platform.WindowAPI
	Events    platform.EventSource
	Autostart autostart.Store
	ExecPath  string
	Runtime   WindowRuntime
	NewTray   func(*tray.Controller) TrayRunner
}

// App ties the monitor, tray, journal and splash window together.
// Its exported methods without a context argument are bound to the frontend.
type App struct {
	ctx       context.Context
	mu        sync.Mutex
	cfg       *config.Config
	monitor   *monitor.Monitor
	events    platform.EventSource
	journal   *services.HideJournal
	dbService database.Service
	tray      TrayRunner
	runtime   WindowRuntime
	splash    *time.Timer
	logger    logging.Logger
}

// NewApp builds the application. A journal that cannot be opened is logged and
// left out; hiding works without it.
func NewApp(cfg *config.Config, logger logging.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if opts.Windows == nil {
		opts.Windows = platform.NewWindowAPI()
	}
	if opts.Events == nil {
		opts.Events = platform.NewEventSource(logger)
	}
	if opts.Autostart == nil {
		store, err := autostart.New(cfg.AppName)
		if err != nil {
			logger.Warn("Autostart is unavailable", "error", err)
		} else {
			opts.Autostart = store
		}
	}
	if opts.Runtime == nil {
		opts.Runtime = wailsRuntime{}
	}
	if opts.NewTray == nil {
		opts.NewTray = func(c *tray.Controller) TrayRunner { return tray.New(c) }
	}

	a := &App{
		cfg:     cfg,
		events:  opts.Events,
		runtime: opts.Runtime,
		logger:  logger,
	}

	monitorOpts := []monitor.Option{monitor.WithLogger(logger)}
	if cfg.Journal.Enabled {
		journal, dbService, err := OpenJournal(context.Background(), cfg, logger)
		if err != nil {
			logging.LogError(logger, err, "NewApp.OpenJournal", map[string]interface{}{"path": cfg.JournalPath()})
			logger.Warn("Continuing without hide journal", "reason", journalFailureReason(err))
		} else {
			a.journal = journal
			a.dbService = dbService
			monitorOpts = append(monitorOpts, monitor.WithRecorder(journal))
		}
	}
	a.monitor = monitor.New(cfg.TargetTitle, opts.Windows, monitorOpts...)

	ctrl := tray.NewController(cfg.AppName, a.monitor, opts.Autostart, opts.ExecPath, a, a.Quit, logger)
	a.tray = opts.NewTray(ctrl)

	return a, nil
}

// Startup is called by Wails once the runtime is up
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	if a.journal != nil {
		a.journal.Start()
	}

	// Subscribe before the lookup so a window created in between is still seen.
	if err := a.events.Start(ctx, a.monitor); err != nil {
		a.logger.Warn("Window notifications unavailable, only the start-up check will hide the target", "error", err)
	}

	a.monitor.InitialCheck()

	go a.tray.Run()

	a.logger.Info("Application started", "version", version.Version, "target_title", a.cfg.TargetTitle, "environment", a.cfg.Environment)
}

// DomReady is called after front-end resources have been loaded
func (a *App) DomReady(ctx context.Context) {
	a.logger.Debug("Splash frontend ready")
}

// BeforeClose is called when the application is about to quit
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	return false
}

// Shutdown releases the OS subscription, flushes the journal and closes the database
func (a *App) Shutdown(ctx context.Context) {
	a.logger.Info("Starting application shutdown")

	shutdownCtx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()

	a.mu.Lock()
	if a.splash != nil {
		a.splash.Stop()
		a.splash = nil
	}
	a.mu.Unlock()

	var g errgroup.Group
	g.Go(a.events.Stop)
	if a.journal != nil {
		g.Go(func() error { return a.journal.Stop(shutdownCtx) })
	}
	if err := g.Wait(); err != nil {
		logging.LogError(a.logger, err, "Shutdown", nil)
	}

	if err := closeDatabase(shutdownCtx, a.dbService); err != nil {
		logging.LogError(a.logger, err, "Shutdown.CloseDatabase", nil)
	}

	a.tray.Quit()
	a.logger.Info("Application shutdown completed", "action_count", a.monitor.ActionCount())
}

// Quit ends the Wails application, which runs Shutdown
func (a *App) Quit() {
	ctx := a.context()
	if ctx == nil {
		return
	}
	a.runtime.Quit(ctx)
}

// SecondInstanceLaunched shows the splash of the running instance
func (a *App) SecondInstanceLaunched() {
	a.logger.Info("Second instance launched, showing info")
	a.ShowInfo()
}

func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// GetSplashInfo returns what the splash shows
func (a *App) GetSplashInfo() types.SplashInfo {
	info := types.SplashInfo{
		AppName:     a.cfg.AppName,
		Version:     version.Version,
		ActionCount: a.monitor.ActionCount(),
		Paused:      !a.monitor.Running(),
	}
	if a.journal != nil {
		ctx := a.context()
		if ctx == nil {
			ctx = context.Background()
		}
		info.TotalHidden = a.journal.TotalHidden(ctx)
	}
	return info
}

// ShowInfo pushes fresh splash data to the frontend and shows the window for
// SplashDuration. Calling it again restarts the timer.
func (a *App) ShowInfo() {
	ctx := a.context()
	if ctx == nil {
		a.logger.Debug("Info requested before startup")
		return
	}

	info := a.GetSplashInfo()
	a.runtime.EventsEmit(ctx, SplashEvent, info)
	a.runtime.WindowCenter(ctx)
	a.runtime.WindowShow(ctx)

	a.mu.Lock()
	if a.splash != nil {
		a.splash.Stop()
	}
	a.splash = time.AfterFunc(a.cfg.SplashDuration.Std(), a.HideSplash)
	a.mu.Unlock()

	a.logger.Debug("Splash shown", "action_count", info.ActionCount, "total_hidden", info.TotalHidden)
}

// HideSplash hides the splash window early
func (a *App) HideSplash() {
	ctx := a.context()
	if ctx == nil {
		return
	}

	a.mu.Lock()
	if a.splash != nil {
		a.splash.Stop()
		a.splash = nil
	}
	a.mu.Unlock()

	a.runtime.WindowHide(ctx)
}
