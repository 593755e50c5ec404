package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"icloudmonkey/internal/app"
	"icloudmonkey/internal/autostart"
	"icloudmonkey/internal/config"
	"icloudmonkey/internal/infrastructure/logging"
	"icloudmonkey/internal/monitor"
	"icloudmonkey/internal/output"
	"icloudmonkey/internal/platform"
	"icloudmonkey/internal/version"
)

// defaultDataDirFlag is the data directory used when --data-dir is not given
func defaultDataDirFlag() string {
	dir, err := config.DefaultDataDir()
	if err != nil {
		return "."
	}
	return dir
}

// loadConfig reads config.toml from dataDir, applies environment overrides and
// builds the logger at the configured level.
func loadConfig(dataDir string) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(dataDir, logging.NewDefaultLogger())
	if err != nil {
		return nil, nil, err
	}
	cfg.LoadFromEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewLogger(level), nil
}

func newCLI() *cli.App {
	dataDirFlag := &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "directory holding config.toml, the log and the hide journal",
		EnvVars: []string{"ICLOUDMONKEY_DATA_DIR"},
	}

	dataDir := func(c *cli.Context) string {
		if dir := c.String("data-dir"); dir != "" {
			return dir
		}
		return defaultDataDirFlag()
	}

	runAction := func(c *cli.Context) error {
		return runTray(dataDir(c))
	}

	a := cli.NewApp()
	a.Name = config.DefaultAppName
	a.Usage = "hide the iCloud window as soon as it appears"
	a.Version = version.Full()
	a.Flags = []cli.Flag{dataDirFlag}
	a.Action = runAction
	a.Commands = []*cli.Command{
		{
			Name:   "run",
			Usage:  "start the tray application",
			Action: runAction,
		},
		{
			Name:  "check",
			Usage: "hide the target window once if it is showing",
			Action: func(c *cli.Context) error {
				cfg, log, err := loadConfig(dataDir(c))
				if err != nil {
					return err
				}
				return checkOnce(c, cfg, platform.NewWindowAPI(), log)
			},
		},
		{
			Name:  "autostart",
			Usage: "manage starting at sign-in",
			Subcommands: []*cli.Command{
				{
					Name:  "enable",
					Usage: "start at sign-in",
					Action: func(c *cli.Context) error {
						return withAutostart(c, dataDir(c), func(store autostart.Store) error {
							execPath, err := os.Executable()
							if err != nil {
								return fmt.Errorf("locate executable: %w", err)
							}
							return store.Enable(execPath)
						})
					},
				},
				{
					Name:  "disable",
					Usage: "do not start at sign-in",
					Action: func(c *cli.Context) error {
						return withAutostart(c, dataDir(c), func(store autostart.Store) error {
							return store.Disable()
						})
					},
				},
				{
					Name:  "status",
					Usage: "show whether autostart is enabled",
					Action: func(c *cli.Context) error {
						return withAutostart(c, dataDir(c), nil)
					},
				},
			},
		},
		{
			Name:  "stats",
			Usage: "print hide journal statistics",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   string(output.FormatYAML),
					Usage:   "output format: yaml or json",
				},
			},
			Action: func(c *cli.Context) error {
				format, err := output.ParseFormat(c.String("format"))
				if err != nil {
					return err
				}
				cfg, log, err := loadConfig(dataDir(c))
				if err != nil {
					return err
				}
				return printStats(c, cfg, format, log)
			},
		},
	}
	return a
}

func checkOnce(c *cli.Context, cfg *config.Config, windows platform.WindowAPI, log logging.Logger) error {
	m := monitor.New(cfg.TargetTitle, windows, monitor.WithLogger(log))
	if m.InitialCheck() {
		fmt.Fprintf(c.App.Writer, "hidden: %q\n", cfg.TargetTitle)
	} else {
		fmt.Fprintf(c.App.Writer, "not showing: %q\n", cfg.TargetTitle)
	}
	return nil
}

// withAutostart runs change (if any) against the platform store and prints the resulting state
func withAutostart(c *cli.Context, dataDir string, change func(autostart.Store) error) error {
	cfg, _, err := loadConfig(dataDir)
	if err != nil {
		return err
	}
	store, err := autostart.New(cfg.AppName)
	if err != nil {
		return err
	}
	if change != nil {
		if err := change(store); err != nil {
			return err
		}
	}

	enabled, err := store.IsEnabled()
	if err != nil {
		return err
	}
	if enabled {
		fmt.Fprintln(c.App.Writer, "autostart: enabled")
	} else {
		fmt.Fprintln(c.App.Writer, "autostart: disabled")
	}
	return nil
}

func printStats(c *cli.Context, cfg *config.Config, format output.Format, log logging.Logger) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	journal, dbService, err := app.OpenJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer dbService.Close()

	stats, err := journal.Stats(ctx)
	if err != nil {
		return err
	}
	return output.Print(c.App.Writer, format, output.NewStatsReport(cfg.JournalPath(), stats))
}
