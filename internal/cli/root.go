// Package cli wires the shiftr commands. With no subcommand the
// interactive dashboard starts; every other command performs one
// operation and exits.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/shiftr/internal/config"
	"github.com/sadopc/shiftr/internal/logging"
	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
	"github.com/sadopc/shiftr/internal/tui"
)

// syncWait bounds how long a command waits for its background upload
// before exiting. The tracker gives up on a single call sooner.
const syncWait = 45 * time.Second

type app struct {
	cfg     config.Config
	store   *store.Store
	tracker *tracker.Tracker
	logger  *slog.Logger
	closers []io.Closer

	envFiles    []string
	verbose     bool
	trackerOpts []tracker.Option
}

// Execute runs the root command against os.Args.
func Execute() error {
	a := &app{}
	return a.execute(newRootCmd(a))
}

// execute runs cmd and then releases the database and log file, whether or
// not the command failed.
func (a *app) execute(cmd *cobra.Command) error {
	defer a.close()
	return cmd.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "shiftr",
		Short: "Track work shifts, breaks and distance",
		Long: "shiftr records work shifts with breaks and distance, keeps them in a local\n" +
			"database and mirrors every change to an optional remote store.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			p := tea.NewProgram(tui.NewApp(a.store, a.tracker), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr at debug level instead of the log file")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv file(s) to load (default .env)")

	root.AddCommand(
		startCmd(a),
		breakCmd(a),
		stopCmd(a),
		statusCmd(a),
		editCmd(a),
		historyCmd(a),
		deleteCmd(a),
		exportCmd(a),
		refreshCmd(a),
		pingCmd(a),
		configCmd(a),
		serveCmd(a),
	)
	return root
}

// setup loads configuration and the logger. The TUI owns the terminal, so
// logs go to the log file unless --verbose sends them to stderr.
func (a *app) setup() error {
	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	logger, f, err := logging.ToFile(cfg.LogPath, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	a.closers = append(a.closers, f)
	if a.verbose {
		logger = logging.New(os.Stderr, slog.LevelDebug)
	}
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// open opens the local database and the tracker on top of it.
func (a *app) open() error {
	if a.tracker != nil {
		return nil
	}
	s, err := store.New(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.SetLogger(a.logger)
	a.closers = append(a.closers, s)

	if err := a.cfg.Seed(s); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	opts := append([]tracker.Option{tracker.WithLogger(a.logger)}, a.trackerOpts...)
	a.store = s
	a.tracker = tracker.New(s, nil, opts...)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
	a.closers = nil
	a.store, a.tracker = nil, nil
}

// await blocks until the background sync for a command finishes and
// reports a failure as a warning. The local change stands either way.
func (a *app) await(cmd *cobra.Command, ch <-chan tracker.Result) {
	if ch == nil {
		return
	}
	select {
	case r, ok := <-ch:
		if !ok || r.Err == nil {
			return
		}
		if a.store.Endpoint() == "" {
			// Sync is switched off; nothing to warn about.
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: saved locally, sync failed: %v\n", r.Err)
	case <-time.After(syncWait):
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: saved locally, sync still pending")
	}
}
