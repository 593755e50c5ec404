package main

import (
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"

	"icloudmonkey/internal/app"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/version"
)

const singleInstanceID = "com.icloudmonkey.tray"

// runTray runs the monitor, tray icon and info splash until Exit
func runTray(dataDir string) error {
	cfg, log, err := loadConfig(dataDir)
	if err != nil {
		return err
	}

	if !cfg.IsDevelopment() {
		closer, err := logging.RedirectToFile(cfg.LogPath())
		if err != nil {
			log.Warn("Could not open log file, logging to stderr", "path", cfg.LogPath(), "error", err)
		} else {
			defer closer.Close()
		}
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	application, err := app.NewApp(cfg, log, app.Options{ExecPath: execPath})
	if err != nil {
		return err
	}

	return wails.Run(&options.App{
		Title:             cfg.AppName,
		Width:             320,
		Height:            180,
		DisableResize:     true,
		Frameless:         true,
		StartHidden:       true,
		HideWindowOnClose: true,
		AlwaysOnTop:       true,
		BackgroundColour:  &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:        logging.NewWailsLoggerAdapter(log),
		LogLevel:      wailsLogLevel(cfg.LogLevel),
		OnStartup:     application.Startup,
		OnDomReady:    application.DomReady,
		OnBeforeClose: application.BeforeClose,
		OnShutdown:    application.Shutdown,
		Bind: []interface{}{
			application,
		},
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: singleInstanceID,
			OnSecondInstanceLaunch: func(options.SecondInstanceData) {
				application.SecondInstanceLaunched()
			},
		},
		Windows: &windows.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			DisableWindowIcon:    true,
			ZoomFactor:           1.0,
		},
		Mac: &mac.Options{
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			About: &mac.AboutInfo{
				Title:   cfg.AppName,
				Message: version.Full(),
				Icon:    icon,
			},
		},
	})
}

func wailsLogLevel(level string) logger.LogLevel {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return logger.INFO
	}
	switch l {
	case logging.LevelDebug:
		return logger.DEBUG
	case logging.LevelWarn:
		return logger.WARNING
	case logging.LevelError:
		return logger.ERROR
	default:
		return logger.INFO
	}
}
