package stats

import (
	"testing"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

func results(rs ...model.Result) []model.GameRecord {
	games := make([]model.GameRecord, len(rs))
	for i, r := range rs {
		games[i] = model.GameRecord{ID: int64(i + 1), Result: r}
	}
	return games
}

func TestStreaks(t *testing.T) {
	W, L, D := model.ResultWin, model.ResultLoss, model.ResultDraw
	tests := []struct {
		name        string
		games       []model.GameRecord
		wantCurrent int
		wantWin     int
		wantLoss    int
	}{
		{name: "empty", games: nil},
		{name: "single win", games: results(W), wantCurrent: 1, wantWin: 1},
		{name: "loss run", games: results(W, L, L, L), wantCurrent: -3, wantWin: 1, wantLoss: 3},
		{name: "draw breaks", games: results(W, W, D), wantCurrent: 0, wantWin: 2},
		{name: "longest kept", games: results(W, W, W, L, W), wantCurrent: 1, wantWin: 3, wantLoss: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Streaks(tt.games)
			if got.CurrentStreak != tt.wantCurrent || got.LongestWinStreak != tt.wantWin || got.LongestLossStreak != tt.wantLoss {
				t.Fatalf("unexpected streaks: %+v", got)
			}
		})
	}
}

func TestFormatStreak(t *testing.T) {
	if FormatStreak(0) != "none" || FormatStreak(3) != "3W" || FormatStreak(-2) != "2L" {
		t.Fatalf("unexpected streak formatting")
	}
}

func TestRecentGamesNewestFirst(t *testing.T) {
	games := results(model.ResultWin, model.ResultLoss, model.ResultDraw)
	recent := RecentGames(games, 2)
	if len(recent) != 2 || recent[0].ID != 3 || recent[1].ID != 2 {
		t.Fatalf("unexpected recent games: %+v", recent)
	}
	if got := RecentGames(games, 10); len(got) != 3 || got[2].ID != 1 {
		t.Fatalf("expected all games newest first, got %+v", got)
	}
	if RecentGames(games, 0) != nil {
		t.Fatalf("expected nil for n=0")
	}
}

func TestCardCount(t *testing.T) {
	list := "4x OP01-025 Zoro\n\n  4x OP01-013 Sanji  \n   \n2x ST01-012 Luffy"
	if got := CardCount(list); got != 3 {
		t.Fatalf("expected 3 card lines, got %d", got)
	}
	if CardCount("") != 0 {
		t.Fatalf("expected 0 for empty card list")
	}
}
