package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

// Bar is one labelled value of a percentage bar chart.
type Bar struct {
	Label string
	Value float64
}

type segment struct {
	glyph rune
	color string
}

const (
	minBarWidth         = 10
	terminalWidthBackup = 80
	chartSeparator      = " │ "
	colorReset          = "\x1b[0m"
)

var (
	winSegment  = segment{glyph: '█', color: "\x1b[32m"}
	lossSegment = segment{glyph: '▒', color: "\x1b[31m"}
	drawSegment = segment{glyph: '░', color: "\x1b[90m"}
	rateSegment = segment{glyph: '■', color: "\x1b[36m"}
)

// TimelineChart prints one stacked bar per date: wins, then losses, then draws.
// Bars are scaled so the busiest date fills barWidth.
func TimelineChart(w io.Writer, title string, entries []model.TimelineEntry, barWidth int, forceColor bool) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		_, err := fmt.Fprint(w, "No games logged.\n\n")
		return err
	}
	useColor := shouldUseColor(w, forceColor)

	labelWidth := 0
	maxTotal := 0
	for _, e := range entries {
		if lw := runewidth.StringWidth(e.Date); lw > labelWidth {
			labelWidth = lw
		}
		if total := e.Wins + e.Losses + e.Draws; total > maxTotal {
			maxTotal = total
		}
	}
	width := BarWidthFor(barWidth, labelWidth)

	for _, e := range entries {
		counts := []int{e.Wins, e.Losses, e.Draws}
		cells := scaleCounts(counts, maxTotal, width)
		var row strings.Builder
		row.WriteString(runewidth.FillRight(e.Date, labelWidth))
		row.WriteString(chartSeparator)
		for i, seg := range []segment{winSegment, lossSegment, drawSegment} {
			row.WriteString(seg.render(cells[i], useColor))
		}
		fmt.Fprintf(&row, " %dW %dL %dD", e.Wins, e.Losses, e.Draws)
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	legend := fmt.Sprintf("Legend: %s Win  %s Loss  %s Draw",
		winSegment.render(1, useColor), lossSegment.render(1, useColor), drawSegment.render(1, useColor))
	if _, err := fmt.Fprintln(w, legend); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RateChart prints one bar per label on a fixed 0-100 scale.
func RateChart(w io.Writer, title string, bars []Bar, barWidth int, forceColor bool) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(bars) == 0 {
		_, err := fmt.Fprint(w, "Nothing to chart.\n\n")
		return err
	}
	useColor := shouldUseColor(w, forceColor)
	labelWidth := 0
	for _, b := range bars {
		if lw := runewidth.StringWidth(clipCell(b.Label)); lw > labelWidth {
			labelWidth = lw
		}
	}
	width := BarWidthFor(barWidth, labelWidth)
	for _, b := range bars {
		v := math.Max(0, math.Min(100, b.Value))
		filled := int(math.Round(v / 100 * float64(width)))
		line := runewidth.FillRight(clipCell(b.Label), labelWidth) + chartSeparator +
			rateSegment.render(filled, useColor) + strings.Repeat(" ", width-filled) +
			fmt.Sprintf(" %5.1f%%", b.Value)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BarWidthFor picks the bar area width. A non-positive requested width means
// fit the terminal next to a label column of labelWidth.
func BarWidthFor(requested, labelWidth int) int {
	if requested > 0 {
		if requested < minBarWidth {
			return minBarWidth
		}
		return requested
	}
	// Leave room for the trailing counts.
	width := terminalWidth() - labelWidth - runewidth.StringWidth(chartSeparator) - 16
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

// scaleCounts converts counts to cell widths so that maxTotal maps to width.
// Any non-zero count gets at least one cell.
func scaleCounts(counts []int, maxTotal, width int) []int {
	cells := make([]int, len(counts))
	if maxTotal <= 0 {
		return cells
	}
	for i, c := range counts {
		if c <= 0 {
			continue
		}
		n := int(math.Round(float64(c) / float64(maxTotal) * float64(width)))
		if n < 1 {
			n = 1
		}
		cells[i] = n
	}
	return cells
}

func (s segment) render(n int, useColor bool) string {
	if n <= 0 {
		return ""
	}
	bar := strings.Repeat(string(s.glyph), n)
	if useColor {
		return s.color + bar + colorReset
	}
	return bar
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
