package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/api"
	"github.com/balkashynov/punch/internal/auth"
	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "punch",
	Short: "Clock in and out from the terminal",
	Long: `punch is a command-line attendance tracker.
Clock in, take breaks, clock out and review recent sessions against your
team's time-tracking API, all from the terminal.`,
	SilenceUsage: true,
}

// app is everything a command needs once config, logging and storage are up
type app struct {
	cfg     config.Config
	logger  *log.Logger
	logFile *os.File
	ctrl    *tracker.Controller
	widget  *tracker.Widget
}

func (a *app) close() {
	if err := db.Close(); err != nil {
		a.logger.Warn("closing database", "err", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// initApp loads config, opens the log file and database, and builds the
// tracker. With remote false the API section of the config is not required
// and no controller is built.
func initApp(remote bool) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if remote {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, err = config.LoadLocal(cfgPath)
	}
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	if err := db.Initialize(cfg.DB.Path); err != nil {
		logFile.Close()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, logFile: logFile}
	if !remote {
		return a, nil
	}

	client := api.NewClient(cfg.API.URL, cfg.API.Timeout, logger.WithPrefix("api"))
	provider := auth.NewStoreProvider(nil)
	a.ctrl = tracker.NewController(client, provider, tracker.NewBus(),
		tracker.WithLocation(cfg.API.Location),
		tracker.WithLogger(logger.WithPrefix("tracker")),
	)
	a.widget = tracker.NewWidget(a.ctrl, time.Now, logger.WithPrefix("widget"))
	return a, nil
}

// newLogger writes to the configured file; the terminal belongs to the UI
func newLogger(cfg config.LogConfig) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return logger, f, nil
}

// withApp wraps a command function to bring the app up first and tear it
// down afterwards
func withApp(remote bool, fn func(*cobra.Command, []string, *app)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := initApp(remote)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer a.close()
		fn(cmd, args, a)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.punch/config.yaml)")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}
