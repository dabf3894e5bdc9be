package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tcgjournal/internal/charts"
	"github.com/verte-zerg/tcgjournal/internal/config"
	"github.com/verte-zerg/tcgjournal/internal/model"
	"github.com/verte-zerg/tcgjournal/internal/stats"
	"github.com/verte-zerg/tcgjournal/internal/transfer"
	"github.com/verte-zerg/tcgjournal/internal/watch"
)

var (
	statsPlain    bool
	statsJSON     bool
	statsDeck     string
	statsOpponent string
	statsSince    string
	statsLast     int
	statsBarWidth int

	exportOut string

	importYes bool

	chartsOut   string
	chartsTheme string
	chartsOpen  bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addFilterFlags(cmd)
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the dashboard")
	cmd.Flags().BoolVar(&statsJSON, "json", false, "print the aggregates as JSON")
	cmd.Flags().IntVar(&statsBarWidth, "bar-width", 0, "chart bar width (default: fit terminal)")
	return cmd
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsDeck, "deck", "", "only games with this deck")
	cmd.Flags().StringVar(&statsOpponent, "opponent", "", "only games against this opponent")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to the last N games")
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := parseFilter(statsDeck, statsOpponent, statsSince, statsLast)
	if err != nil {
		return err
	}
	if !statsPlain && !statsJSON && isTerminal(cmd.OutOrStdout()) {
		return runDashboard(cmd, filter)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	applyIntConfig(cmd, "bar-width", &statsBarWidth, a.cfg.Stats.BarWidth)
	report := stats.NewReport(a.journal.Snapshot(), filter, a.recent())
	if statsJSON {
		return writeReportJSON(cmd.OutOrStdout(), report)
	}
	return stats.RenderReport(cmd.OutOrStdout(), report, statsBarWidth)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type reportJSON struct {
	Overall   model.OverallStats    `json:"overall"`
	Decks     []model.DeckStats     `json:"decks"`
	Opponents []model.OpponentStats `json:"opponents"`
	Timeline  []model.TimelineEntry `json:"timeline"`
}

func writeReportJSON(w io.Writer, r stats.Report) error {
	out := reportJSON{
		Overall:   r.Overall,
		Decks:     r.Decks,
		Opponents: r.Opponents,
		Timeline:  r.Timeline,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export decks and games to a JSON file",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", ".", "output file or directory (- for stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	snap := a.journal.Snapshot()
	if exportOut == "-" {
		return transfer.Export(cmd.OutOrStdout(), snap, now)
	}
	path, err := transfer.ExportFile(config.ExpandHome(exportOut), snap, now)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d decks and %d games to %s\n", len(snap.Decks), len(snap.Games), path)
	return err
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the journal with an exported file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVarP(&importYes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	doc, err := transfer.ImportFile(args[0])
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if !importYes {
		prompt := fmt.Sprintf("Replace all current data with %d decks and %d games?", len(doc.DeckList), len(doc.GameLog))
		confirmed, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
		if err != nil {
			return err
		}
		if !confirmed {
			logErrln("Aborted.")
			return nil
		}
	}
	if err := a.journal.Replace(cmd.Context(), doc.Snapshot()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d decks and %d games\n", len(doc.DeckList), len(doc.GameLog))
	return err
}

func newChartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Write HTML charts of the journal",
		Args:  cobra.NoArgs,
		RunE:  runChartsCmd,
	}
	addFilterFlags(cmd)
	cmd.Flags().StringVar(&chartsOut, "out", "", "output directory (default: data dir)")
	cmd.Flags().StringVar(&chartsTheme, "theme", defaultTheme, "chart theme")
	cmd.Flags().BoolVar(&chartsOpen, "open", false, "open the charts in a browser")
	return cmd
}

func runChartsCmd(cmd *cobra.Command, _ []string) error {
	filter, err := parseFilter(statsDeck, statsOpponent, statsSince, statsLast)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	applyStringConfig(cmd, "out", &chartsOut, a.cfg.Charts.OutDir)
	applyStringConfig(cmd, "theme", &chartsTheme, a.cfg.Charts.Theme)
	if chartsOut == "" {
		chartsOut = config.DefaultChartsDir()
	}

	cfg := charts.DefaultConfig()
	cfg.Theme = chartsTheme
	report := stats.NewReport(a.journal.Snapshot(), filter, a.recent())
	paths, err := charts.RenderAll(report, cfg, config.ExpandHome(chartsOut))
	if err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return err
		}
	}
	if chartsOpen {
		for _, p := range paths {
			if err := charts.OpenInBrowser(p); err != nil {
				logErrf("failed to open %s: %v\n", p, err)
			}
		}
	}
	return nil
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the report again whenever the journal changes",
		Args:  cobra.NoArgs,
		RunE:  runWatchCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	filter, err := parseFilter(statsDeck, statsOpponent, statsSince, statsLast)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	w := cmd.OutOrStdout()
	render := func(ctx context.Context) error {
		snap, err := a.store.Load(ctx)
		if err != nil {
			return err
		}
		report := stats.NewReport(snap, filter, a.recent())
		if _, err := fmt.Fprintf(w, "--- %s ---\n", time.Now().Format(time.TimeOnly)); err != nil {
			return err
		}
		return stats.RenderReport(w, report, a.barWidth())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := render(ctx); err != nil {
		return err
	}
	a.logger.Info("watching journal for changes", slog.String("db", a.store.Path()))
	return watch.New(a.store.Path(), render, a.logger).Run(ctx)
}
