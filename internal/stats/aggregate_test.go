package stats

import (
	"math"
	"testing"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

func game(deck, opponent string, result model.Result) model.GameRecord {
	return model.GameRecord{Date: "2024-03-01", DeckUsed: deck, Opponent: opponent, Result: result}
}

func exampleJournal() ([]model.Deck, []model.GameRecord) {
	decks := []model.Deck{{Name: "Red Zoro", Leader: "Zoro", Colors: "Red"}}
	games := []model.GameRecord{
		game("Red Zoro", "Alice", model.ResultWin),
		game("Red Zoro", "Alice", model.ResultLoss),
		game("Red Zoro", "Bob", model.ResultDraw),
	}
	return decks, games
}

func TestMixedJournalAggregates(t *testing.T) {
	decks, games := exampleJournal()

	deckStats := DeckStats(decks, games)
	if len(deckStats) != 1 {
		t.Fatalf("expected 1 deck row, got %d", len(deckStats))
	}
	want := model.DeckStats{Name: "Red Zoro", Leader: "Zoro", Colors: "Red", Wins: 1, Losses: 1, Draws: 1, Total: 3, WinRate: 33.3}
	if deckStats[0] != want {
		t.Fatalf("unexpected deck stats: %+v", deckStats[0])
	}

	opponents := OpponentStats(games)
	if len(opponents) != 2 {
		t.Fatalf("expected 2 opponents, got %d", len(opponents))
	}
	alice := model.OpponentStats{Opponent: "Alice", Wins: 1, Losses: 1, Draws: 0, Total: 2, WinRate: 50.0}
	if opponents[0] != alice {
		t.Fatalf("unexpected Alice stats: %+v", opponents[0])
	}
	bob := model.OpponentStats{Opponent: "Bob", Draws: 1, Total: 1, WinRate: 0}
	if opponents[1] != bob {
		t.Fatalf("unexpected Bob stats: %+v", opponents[1])
	}

	overall := Overall(games)
	wantOverall := model.OverallStats{TotalGames: 3, TotalWins: 1, TotalLosses: 1, TotalDraws: 1, OverallWinRate: 50.0}
	if overall != wantOverall {
		t.Fatalf("unexpected overall stats: %+v", overall)
	}
}

func TestDeckStatsUnplayedDeckIsZero(t *testing.T) {
	decks := []model.Deck{{Name: "Red Zoro"}, {Name: "Blue Crocodile"}}
	games := []model.GameRecord{game("Red Zoro", "Alice", model.ResultWin)}

	rows := DeckStats(decks, games)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Red Zoro" || rows[1].Name != "Blue Crocodile" {
		t.Fatalf("deck order not preserved: %+v", rows)
	}
	if rows[1] != (model.DeckStats{Name: "Blue Crocodile"}) {
		t.Fatalf("expected zero stats for unplayed deck, got %+v", rows[1])
	}
	if got := DeckStats(decks, nil); got[0].Total != 0 || got[0].WinRate != 0 {
		t.Fatalf("expected zero stats with empty log, got %+v", got[0])
	}
}

func TestDeckStatsExcludesOrphanedGames(t *testing.T) {
	decks := []model.Deck{{Name: "Red Zoro"}}
	games := []model.GameRecord{
		game("Red Zoro", "Alice", model.ResultWin),
		game("Deleted Deck", "Alice", model.ResultLoss),
		game("Deleted Deck", "Bob", model.ResultWin),
	}

	sum := 0
	for _, row := range DeckStats(decks, games) {
		sum += row.Total
	}
	if sum != 1 {
		t.Fatalf("expected orphaned games to be excluded, deck total %d", sum)
	}

	oppTotal := 0
	for _, row := range OpponentStats(games) {
		oppTotal += row.Total
	}
	if oppTotal != len(games) {
		t.Fatalf("expected opponent totals %d to cover every game, got %d", len(games), oppTotal)
	}
	if Overall(games).TotalGames != 3 {
		t.Fatalf("expected orphaned games in overall stats")
	}
}

func TestOpponentStatsFirstSeenOrder(t *testing.T) {
	games := []model.GameRecord{
		game("d", "Zed", model.ResultWin),
		game("d", "alice", model.ResultWin),
		game("d", "Alice", model.ResultLoss),
		game("d", "Zed", model.ResultLoss),
	}
	rows := OpponentStats(games)
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Opponent
	}
	want := []string{"Zed", "alice", "Alice"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if len(OpponentStats(nil)) != 0 {
		t.Fatalf("expected empty opponent stats for empty log")
	}
}

func TestTimelineSortsChronologically(t *testing.T) {
	games := []model.GameRecord{
		{Date: "2024-10-02", Result: model.ResultWin},
		{Date: "2024-09-15", Result: model.ResultLoss},
		{Date: "not a date", Result: model.ResultWin},
		{Date: "2024-10-02", Result: model.ResultDraw},
		{Date: "Sep 1, 2024", Result: model.ResultWin},
		{Date: "2024-10-02", Result: model.ResultWin},
	}
	entries := Timeline(games)
	wantDates := []string{"Sep 1, 2024", "2024-09-15", "2024-10-02", "not a date"}
	if len(entries) != len(wantDates) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(wantDates), len(entries), entries)
	}
	for i, date := range wantDates {
		if entries[i].Date != date {
			t.Fatalf("bucket %d: expected %q, got %q", i, date, entries[i].Date)
		}
	}
	merged := entries[2]
	if merged.Wins != 2 || merged.Losses != 0 || merged.Draws != 1 {
		t.Fatalf("unexpected merged bucket: %+v", merged)
	}
}

func TestTimelineSortsYearsOutsideNanosecondRange(t *testing.T) {
	games := []model.GameRecord{
		{Date: "2300-01-01", Result: model.ResultWin},
		{Date: "1500-01-01", Result: model.ResultLoss},
		{Date: "2024-01-01", Result: model.ResultDraw},
	}
	entries := Timeline(games)
	wantDates := []string{"1500-01-01", "2024-01-01", "2300-01-01"}
	if len(entries) != len(wantDates) {
		t.Fatalf("expected %d buckets, got %d", len(wantDates), len(entries))
	}
	for i, date := range wantDates {
		if entries[i].Date != date {
			t.Fatalf("bucket %d: expected %q, got %q", i, date, entries[i].Date)
		}
	}
}

func TestOverallAllDrawsIsZero(t *testing.T) {
	games := []model.GameRecord{
		game("d", "a", model.ResultDraw),
		game("d", "b", model.ResultDraw),
	}
	overall := Overall(games)
	if overall.TotalGames != 2 || overall.TotalDraws != 2 {
		t.Fatalf("unexpected totals: %+v", overall)
	}
	if math.IsNaN(overall.OverallWinRate) || overall.OverallWinRate != 0 {
		t.Fatalf("expected 0 win rate, got %v", overall.OverallWinRate)
	}
	if Overall(nil) != (model.OverallStats{}) {
		t.Fatalf("expected zero stats for empty log")
	}
}

func TestWinRateBoundsAndRounding(t *testing.T) {
	tests := []struct {
		wins, den int
		want      float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{5, 5, 100},
		{0, 7, 0},
	}
	for _, tt := range tests {
		got := WinRate(tt.wins, tt.den)
		if got != tt.want {
			t.Fatalf("WinRate(%d, %d) = %v, want %v", tt.wins, tt.den, got, tt.want)
		}
		if got < 0 || got > 100 {
			t.Fatalf("WinRate(%d, %d) out of range: %v", tt.wins, tt.den, got)
		}
	}
}

func TestUnknownResultCountsAsDraw(t *testing.T) {
	decks := []model.Deck{{Name: "d"}}
	games := []model.GameRecord{
		game("d", "a", model.ResultWin),
		game("d", "a", model.Result("Forfeit")),
	}
	row := DeckStats(decks, games)[0]
	if row.Draws != 1 || row.Total != 2 || row.WinRate != 50 {
		t.Fatalf("unexpected deck row: %+v", row)
	}
	if o := Overall(games); o.TotalDraws != 1 || o.OverallWinRate != 100 {
		t.Fatalf("unexpected overall: %+v", o)
	}
}

func TestAggregatesDoNotMutateInputs(t *testing.T) {
	decks, games := exampleJournal()
	games = append(games, model.GameRecord{Date: "2024-01-01", DeckUsed: "Red Zoro", Opponent: "Cara", Result: model.ResultWin})
	before := append([]model.GameRecord(nil), games...)

	_ = DeckStats(decks, games)
	_ = OpponentStats(games)
	_ = Timeline(games)
	_ = Overall(games)

	for i := range games {
		if games[i] != before[i] {
			t.Fatalf("game %d mutated: %+v", i, games[i])
		}
	}
}
