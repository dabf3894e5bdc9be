// Package charts renders journal statistics as standalone HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/verte-zerg/tcgjournal/internal/model"
	"github.com/verte-zerg/tcgjournal/internal/stats"
)

// File names written by RenderAll.
const (
	DeckFile     = "deck-win-rates.html"
	ResultsFile  = "results.html"
	TimelineFile = "timeline.html"
)

// Config holds presentation settings shared by every chart.
type Config struct {
	Width  string
	Height string
	Theme  string
	Colors []string
}

// DefaultConfig returns the default chart configuration.
func DefaultConfig() Config {
	return Config{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#3BA272", "#EE6666", "#FAC858", "#5470C6", "#73C0DE", "#9A60B4"},
	}
}

func (c Config) color(i int) string {
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

func (c Config) globals(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     c.Width,
			Height:    c.Height,
			Theme:     c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
	}
}

// DeckWinRates draws one bar per deck. Decks without games are included
// at 0% so the chart lines up with the deck table.
func DeckWinRates(w io.Writer, decks []model.DeckStats, cfg Config) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(cfg.globals("Deck Win Rates", fmt.Sprintf("%d decks", len(decks)))...)

	labels := make([]string, len(decks))
	rates := make([]opts.BarData, len(decks))
	played := make([]opts.BarData, len(decks))
	for i, d := range decks {
		labels[i] = d.Name
		rates[i] = opts.BarData{Value: d.WinRate, Name: fmt.Sprintf("%dW %dL %dD", d.Wins, d.Losses, d.Draws)}
		played[i] = opts.BarData{Value: d.Total}
	}

	bar.SetXAxis(labels).
		AddSeries("Win Rate %", rates, charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color(0)})).
		AddSeries("Games", played, charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color(3)})).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(true),
			}),
		)
	return bar.Render(w)
}

// Results draws the win/loss/draw breakdown as a pie.
func Results(w io.Writer, overall model.OverallStats, cfg Config) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(cfg.globals("Results", fmt.Sprintf("%d games, %.1f%% win rate", overall.TotalGames, overall.OverallWinRate))...)

	slices := stats.ResultBreakdown(overall)
	data := make([]opts.PieData, 0, len(slices))
	for i, s := range slices {
		data = append(data, opts.PieData{
			Name:      string(s.Result),
			Value:     s.Count,
			ItemStyle: &opts.ItemStyle{Color: cfg.color(i)},
		})
	}
	pie.AddSeries("Results", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: []string{"35%", "65%"},
			}),
		)
	return pie.Render(w)
}

// Timeline draws wins, losses and draws per play date as three lines.
func Timeline(w io.Writer, entries []model.TimelineEntry, cfg Config) error {
	line := charts.NewLine()
	line.SetGlobalOptions(cfg.globals("Results Over Time", fmt.Sprintf("%d play dates", len(entries)))...)

	labels := make([]string, len(entries))
	wins := make([]opts.LineData, len(entries))
	losses := make([]opts.LineData, len(entries))
	draws := make([]opts.LineData, len(entries))
	for i, e := range entries {
		labels[i] = e.Date
		wins[i] = opts.LineData{Value: e.Wins}
		losses[i] = opts.LineData{Value: e.Losses}
		draws[i] = opts.LineData{Value: e.Draws}
	}

	line.SetXAxis(labels)
	series := []struct {
		name string
		data []opts.LineData
	}{
		{"Wins", wins},
		{"Losses", losses},
		{"Draws", draws},
	}
	for i, s := range series {
		line.AddSeries(s.name, s.data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cfg.color(i)}),
		)
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(false),
		}),
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)
	return line.Render(w)
}

// RenderAll writes the three charts for report into dir and returns the
// paths written.
func RenderAll(report stats.Report, cfg Config, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create chart dir: %w", err)
	}
	jobs := []struct {
		name   string
		render func(io.Writer) error
	}{
		{DeckFile, func(w io.Writer) error { return DeckWinRates(w, report.Decks, cfg) }},
		{ResultsFile, func(w io.Writer) error { return Results(w, report.Overall, cfg) }},
		{TimelineFile, func(w io.Writer) error { return Timeline(w, report.Timeline, cfg) }},
	}
	paths := make([]string, 0, len(jobs))
	for _, job := range jobs {
		path := filepath.Join(dir, job.name)
		if err := renderFile(path, job.render); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func renderFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close chart file: %w", cerr)
		}
	}()
	if err := render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// OpenInBrowser opens the given file in the default web browser.
func OpenInBrowser(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
