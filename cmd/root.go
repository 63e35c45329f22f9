package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/smartmd/internal/app"
	"github.com/zjrosen/smartmd/internal/config"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/syntax"
	"github.com/zjrosen/smartmd/internal/theme"
	"github.com/zjrosen/smartmd/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the editor.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config.
var localConfigPath = filepath.Join("."+config.AppName, "config.yaml")

var (
	version = "dev"
	cfgFile string
	debug   bool

	v       = config.NewViper()
	cfg     config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "smartmd [files...]",
	Short: "A terminal Markdown editor with live decorations",
	Long: `A terminal Markdown editor that hides syntax markers away from the cursor,
draws rules and bullets, and colors status lines as you type.

Each file is opened in its own tab. Files that do not exist yet are created
on first save. Cursor and scroll positions are remembered per file.`,
	Version:       version,
	SilenceUsage:  true,
	RunE:          runApp,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.smartmd/config.yaml, then ~/.config/smartmd/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write a debug log and enable the log overlay (F2)")
	rootCmd.Flags().Bool("no-watch", false,
		"do not reload files changed on disk")
}

func initConfig() error {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(localConfigPath); err == nil {
			path = localConfigPath
		}
	}

	loaded, used, err := config.Load(v, path)
	if err != nil {
		return err
	}
	cfg, cfgPath = loaded, used

	if debug || os.Getenv("SMARTMD_DEBUG") != "" {
		debug = true
		if cfg.Log.Path == "" {
			cfg.Log.Path = filepath.Join(cfg.DataDir, "debug.log")
		}
		cfg.Log.Level = log.LevelDebug.String()
	}
	return nil
}

// initLogging installs the file logger when a log path is configured.
func initLogging() (func(), error) {
	if cfg.Log.Path == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	cleanup, err := log.Init(cfg.Log.Path)
	if err != nil {
		return nil, err
	}
	if level, ok := log.ParseLevel(cfg.Log.Level); ok {
		log.SetMinLevel(level)
	}
	log.Info(log.CatConfig, "starting", "version", version, "config", cfgPath)
	return cleanup, nil
}

func runApp(cmd *cobra.Command, args []string) error {
	closeLog, err := initLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := openServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	th, err := theme.New(svc.Settings.Get().Theme,
		theme.ParseOverrides(cfg.Theme.LightColors(), cfg.Theme.DarkColors()))
	if err != nil {
		return fmt.Errorf("building theme: %w", err)
	}
	defer th.Close()

	var w *watcher.Watcher
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); cfg.Watch.Enabled && !noWatch {
		w, err = watcher.New(watcher.Config{DebounceDur: cfg.Watch.Debounce()})
		if err != nil {
			// the editor works without reloads
			log.Warn(log.CatWatcher, "watcher unavailable", "error", err)
			w = nil
		} else {
			w.Start()
		}
	}

	zone.NewGlobal()
	model := app.New(app.Options{
		Settings: svc.Settings,
		States:   svc.States,
		Theme:    th,
		Trees:    syntax.NewProvider(cfg.Cache.DisableTrees),
		Tracer:   svc.Tracing.Tracer(),
		Watcher:  w,
		Files:    args,
		Debug:    debug,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()

	model.Close()
	if w != nil {
		if stopErr := w.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}
