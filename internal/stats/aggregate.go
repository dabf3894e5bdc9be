// Package stats contains the journal aggregations and their text rendering.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

type tally struct {
	wins   int
	losses int
	draws  int
}

// add counts one result. Anything that is not a win or a loss is a draw.
func (t *tally) add(r model.Result) {
	switch r {
	case model.ResultWin:
		t.wins++
	case model.ResultLoss:
		t.losses++
	default:
		t.draws++
	}
}

func (t tally) total() int {
	return t.wins + t.losses + t.draws
}

// WinRate returns wins as a percentage of den rounded to one decimal,
// or 0 when den is not positive.
func WinRate(wins, den int) float64 {
	if den <= 0 {
		return 0
	}
	return round1(float64(wins) / float64(den) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// DeckStats returns one row per deck in list order. The win rate divides by
// every game played with the deck, draws included. Games whose deck is not in
// decks are ignored.
func DeckStats(decks []model.Deck, games []model.GameRecord) []model.DeckStats {
	byDeck := make(map[string]*tally, len(decks))
	for _, d := range decks {
		byDeck[model.DeckKey(d)] = &tally{}
	}
	for _, g := range games {
		if t, ok := byDeck[model.GameDeckKey(g)]; ok {
			t.add(g.Result)
		}
	}

	out := make([]model.DeckStats, 0, len(decks))
	for _, d := range decks {
		t := byDeck[model.DeckKey(d)]
		total := t.total()
		out = append(out, model.DeckStats{
			Name:    d.Name,
			Colors:  d.Colors,
			Leader:  d.Leader,
			Wins:    t.wins,
			Losses:  t.losses,
			Draws:   t.draws,
			Total:   total,
			WinRate: WinRate(t.wins, total),
		})
	}
	return out
}

// OpponentStats returns one row per distinct opponent in first-seen order.
// The win rate divides by decisive games only.
func OpponentStats(games []model.GameRecord) []model.OpponentStats {
	order := make([]string, 0)
	byOpponent := map[string]*tally{}
	for _, g := range games {
		t, ok := byOpponent[g.Opponent]
		if !ok {
			t = &tally{}
			byOpponent[g.Opponent] = t
			order = append(order, g.Opponent)
		}
		t.add(g.Result)
	}

	out := make([]model.OpponentStats, 0, len(order))
	for _, name := range order {
		t := byOpponent[name]
		out = append(out, model.OpponentStats{
			Opponent: name,
			Wins:     t.wins,
			Losses:   t.losses,
			Draws:    t.draws,
			Total:    t.total(),
			WinRate:  WinRate(t.wins, t.wins+t.losses),
		})
	}
	return out
}

// Timeline buckets games by their exact date string and sorts the buckets
// chronologically. Dates that cannot be parsed sort last, lexically.
func Timeline(games []model.GameRecord) []model.TimelineEntry {
	type bucket struct {
		entry  model.TimelineEntry
		at     time.Time
		parsed bool
	}
	order := make([]string, 0)
	byDate := map[string]*bucket{}
	for _, g := range games {
		b, ok := byDate[g.Date]
		if !ok {
			b = &bucket{entry: model.TimelineEntry{Date: g.Date}}
			if t, ok := model.ParseDate(g.Date); ok {
				b.at = t
				b.parsed = true
			}
			byDate[g.Date] = b
			order = append(order, g.Date)
		}
		switch g.Result {
		case model.ResultWin:
			b.entry.Wins++
		case model.ResultLoss:
			b.entry.Losses++
		default:
			b.entry.Draws++
		}
	}

	buckets := make([]*bucket, 0, len(order))
	for _, date := range order {
		buckets = append(buckets, byDate[date])
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		bi, bj := buckets[i], buckets[j]
		if bi.parsed != bj.parsed {
			return bi.parsed
		}
		if !bi.parsed {
			return bi.entry.Date < bj.entry.Date
		}
		return bi.at.Before(bj.at)
	})

	out := make([]model.TimelineEntry, len(buckets))
	for i, b := range buckets {
		out[i] = b.entry
	}
	return out
}

// Overall summarizes the whole log. The win rate excludes draws and is 0
// when no game was decisive.
func Overall(games []model.GameRecord) model.OverallStats {
	var t tally
	for _, g := range games {
		t.add(g.Result)
	}
	return model.OverallStats{
		TotalGames:     len(games),
		TotalWins:      t.wins,
		TotalLosses:    t.losses,
		TotalDraws:     t.draws,
		OverallWinRate: WinRate(t.wins, t.wins+t.losses),
	}
}
