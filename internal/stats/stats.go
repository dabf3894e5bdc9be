package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

// RenderReport prints every section of the report.
func RenderReport(w io.Writer, r Report, barWidth int) error {
	if err := RenderSummary(w, r); err != nil {
		return err
	}
	if len(r.Games) == 0 && r.DeckCount == 0 {
		return nil
	}
	if err := RenderDeckTable(w, r.Decks); err != nil {
		return err
	}
	if err := RenderOpponentTable(w, r.Opponents); err != nil {
		return err
	}
	if err := RenderTimeline(w, r.Timeline, barWidth); err != nil {
		return err
	}
	return RenderRecent(w, r.Recent)
}

// RenderSummary prints the overview numbers.
func RenderSummary(w io.Writer, r Report) error {
	o := r.Overall
	lines := []string{"Summary"}
	if r.Filter.Active() {
		lines = append(lines, "Filter: "+FormatFilter(r.Filter))
	}
	lines = append(lines,
		fmt.Sprintf("Games: %d", o.TotalGames),
		fmt.Sprintf("Win Rate: %.1f%%", o.OverallWinRate),
		fmt.Sprintf("Record: %d-%d-%d", o.TotalWins, o.TotalLosses, o.TotalDraws),
		fmt.Sprintf("Decks: %d", r.DeckCount),
		fmt.Sprintf("Opponents: %d", len(r.Opponents)),
		fmt.Sprintf("Streak: %s (best %dW, worst %dL)",
			FormatStreak(r.Streaks.CurrentStreak), r.Streaks.LongestWinStreak, r.Streaks.LongestLossStreak),
		"",
	)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDeckTable prints per-deck records.
func RenderDeckTable(w io.Writer, rows []model.DeckStats) error {
	if _, err := fmt.Fprintln(w, "Decks"); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprint(w, "No decks yet.\n\n")
		return err
	}
	headers := []string{"Deck", "Leader", "Colors", "W", "L", "D", "Games", "Win Rate"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Name,
			r.Leader,
			r.Colors,
			fmt.Sprintf("%d", r.Wins),
			fmt.Sprintf("%d", r.Losses),
			fmt.Sprintf("%d", r.Draws),
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%.1f%%", r.WinRate),
		})
	}
	return writeTable(w, headers, tableRows, map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true})
}

// RenderOpponentTable prints head-to-head records.
func RenderOpponentTable(w io.Writer, rows []model.OpponentStats) error {
	if _, err := fmt.Fprintln(w, "Opponents"); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprint(w, "No games logged.\n\n")
		return err
	}
	headers := []string{"Opponent", "W", "L", "D", "Games", "Win Rate"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Opponent,
			fmt.Sprintf("%d", r.Wins),
			fmt.Sprintf("%d", r.Losses),
			fmt.Sprintf("%d", r.Draws),
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%.1f%%", r.WinRate),
		})
	}
	return writeTable(w, headers, tableRows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
}

// RenderTimeline prints the per-date results as a stacked bar chart.
func RenderTimeline(w io.Writer, entries []model.TimelineEntry, barWidth int) error {
	return TimelineChart(w, "Timeline", entries, barWidth, false)
}

// RenderRecent prints the most recent games, newest first.
func RenderRecent(w io.Writer, games []model.GameRecord) error {
	if _, err := fmt.Fprintln(w, "Recent Games"); err != nil {
		return err
	}
	if len(games) == 0 {
		_, err := fmt.Fprint(w, "No games logged.\n\n")
		return err
	}
	return writeTable(w, GameHeaders(), GameRows(games), map[int]bool{0: true})
}

// GameHeaders are the column titles used for game lists.
func GameHeaders() []string {
	return []string{"ID", "Date", "Deck", "Opponent", "Opp. Deck", "Result", "Notes"}
}

// GameRows formats games for a table.
func GameRows(games []model.GameRecord) [][]string {
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		rows = append(rows, []string{
			fmt.Sprintf("%d", g.ID),
			g.Date,
			g.DeckUsed,
			g.Opponent,
			g.OpponentDeck,
			string(g.Result),
			g.Notes,
		})
	}
	return rows
}

// FormatFilter describes an active filter in one line.
func FormatFilter(f model.StatsFilter) string {
	parts := make([]string, 0, 4)
	if f.Deck != "" {
		parts = append(parts, "deck="+f.Deck)
	}
	if f.Opponent != "" {
		parts = append(parts, "opponent="+f.Opponent)
	}
	if f.Since != nil {
		parts = append(parts, "since="+f.Since.Format(model.DateLayout))
	}
	if f.Last > 0 {
		parts = append(parts, fmt.Sprintf("last=%d", f.Last))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "  ")
}

// WriteTable prints an aligned table followed by a blank line.
func WriteTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	return writeTable(w, headers, rows, rightAlign)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
