// Package main provides the CLI entrypoint for tcgjournal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tcgjournal/internal/config"
	"github.com/verte-zerg/tcgjournal/internal/journal"
	"github.com/verte-zerg/tcgjournal/internal/model"
	"github.com/verte-zerg/tcgjournal/internal/stats"
	"github.com/verte-zerg/tcgjournal/internal/statsui"
	"github.com/verte-zerg/tcgjournal/internal/store"
	"github.com/verte-zerg/tcgjournal/internal/watch"
)

const (
	defaultLogLevel = "info"
	defaultTheme    = "light"
)

var (
	rootDBPath     string
	rootConfigPath string
	rootLogLevel   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tcgjournal",
		Short:         "Deck and game journal for trading card games",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&rootDBPath, "db", "", "journal database path")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newDeckCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newChartsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app bundles what every journal command needs.
type app struct {
	cfg     config.FileConfig
	logger  *slog.Logger
	store   *store.Store
	journal *journal.Journal
}

// openApp loads config, opens the store and builds the journal with the
// store and a logger subscribed as observers.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadFileConfig()
	if err != nil {
		return nil, err
	}
	applyStringConfig(cmd, "log-level", &rootLogLevel, cfg.Log.Level)
	level, err := config.ParseLevel(rootLogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	dbPath := config.DefaultDBPath()
	applyStringConfig(cmd, "db", &dbPath, cfg.Journal.DBPath)
	if cmd.Flags().Changed("db") {
		dbPath = rootDBPath
	}
	dbPath = config.ExpandHome(dbPath)

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	snap, err := st.Load(cmd.Context())
	if err != nil {
		closeStore(st)
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	logger.Debug("journal loaded",
		slog.String("db", dbPath),
		slog.Int("decks", len(snap.Decks)),
		slog.Int("games", len(snap.Games)),
	)

	j := journal.New(snap,
		journal.WithObserver(st),
		journal.WithObserver(journal.NewLoggingObserver(logger)),
	)
	return &app{cfg: cfg, logger: logger, store: st, journal: j}, nil
}

func (a *app) close() {
	closeStore(a.store)
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func loadFileConfig() (config.FileConfig, error) {
	path := rootConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (a *app) recent() int {
	if a.cfg.Stats.Recent != nil && *a.cfg.Stats.Recent > 0 {
		return *a.cfg.Stats.Recent
	}
	return stats.DefaultRecent
}

func (a *app) barWidth() int {
	if a.cfg.Stats.BarWidth != nil {
		return *a.cfg.Stats.BarWidth
	}
	return 0
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	return runDashboard(cmd, model.StatsFilter{})
}

// runDashboard shows the stats UI and reloads it whenever the database
// changes underneath it.
func runDashboard(cmd *cobra.Command, filter model.StatsFilter) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ui := statsui.NewModel(a.store, statsui.Config{
		Filter:   filter,
		Recent:   a.recent(),
		BarWidth: a.barWidth(),
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watcher := watch.New(a.store.Path(), func(context.Context) error {
		program.Send(statsui.ReloadMsg{})
		return nil
	}, a.logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Run(ctx); err != nil {
			a.logger.Warn("live reload disabled", slog.Any("err", err))
		}
	}()

	_, runErr := program.Run()
	cancel()
	<-done
	if runErr != nil {
		return fmt.Errorf("failed to run stats TUI: %w", runErr)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := rootConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// parseFilter builds a stats filter from command flags. Since is a UTC
// calendar date to match how play dates are parsed.
func parseFilter(deck, opponent, since string, last int) (model.StatsFilter, error) {
	f := model.StatsFilter{
		Deck:     strings.TrimSpace(deck),
		Opponent: strings.TrimSpace(opponent),
		Last:     last,
	}
	if last < 0 {
		return model.StatsFilter{}, fmt.Errorf("--last must be >= 0")
	}
	if since = strings.TrimSpace(since); since != "" {
		parsed, err := time.ParseInLocation(model.DateLayout, since, time.UTC)
		if err != nil {
			return model.StatsFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		f.Since = &parsed
	}
	return f, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
