package stats

import (
	"github.com/verte-zerg/tcgjournal/internal/model"
)

// DefaultRecent is how many games the recent list shows.
const DefaultRecent = 10

// Report contains precomputed data for stats rendering.
type Report struct {
	Filter    model.StatsFilter
	DeckCount int
	Games     []model.GameRecord
	Decks     []model.DeckStats
	Opponents []model.OpponentStats
	Timeline  []model.TimelineEntry
	Overall   model.OverallStats
	Streaks   model.StreakStats
	Recent    []model.GameRecord
}

// NewReport filters the snapshot's game log and runs every aggregation on it.
func NewReport(snap model.Snapshot, filter model.StatsFilter, recent int) Report {
	games := snap.Games
	if filter.Active() {
		games = FilterGames(games, filter)
	} else {
		games = append([]model.GameRecord(nil), games...)
	}
	return Report{
		Filter:    filter,
		DeckCount: len(snap.Decks),
		Games:     games,
		Decks:     DeckStats(snap.Decks, games),
		Opponents: OpponentStats(games),
		Timeline:  Timeline(games),
		Overall:   Overall(games),
		Streaks:   Streaks(games),
		Recent:    RecentGames(games, recent),
	}
}

// ResultSlice is one segment of the result breakdown.
type ResultSlice struct {
	Result model.Result
	Count  int
}

// ResultBreakdown splits the overall totals into win, loss and draw slices.
func ResultBreakdown(o model.OverallStats) []ResultSlice {
	return []ResultSlice{
		{Result: model.ResultWin, Count: o.TotalWins},
		{Result: model.ResultLoss, Count: o.TotalLosses},
		{Result: model.ResultDraw, Count: o.TotalDraws},
	}
}
