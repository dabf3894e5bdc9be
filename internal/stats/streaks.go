package stats

import (
	"fmt"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

// Streaks computes win/loss streaks over games in log order. Draws and
// unknown results break both streaks.
func Streaks(games []model.GameRecord) model.StreakStats {
	var out model.StreakStats
	wins, losses := 0, 0
	for _, g := range games {
		switch g.Result {
		case model.ResultWin:
			wins++
			losses = 0
			if wins > out.LongestWinStreak {
				out.LongestWinStreak = wins
			}
		case model.ResultLoss:
			losses++
			wins = 0
			if losses > out.LongestLossStreak {
				out.LongestLossStreak = losses
			}
		default:
			wins, losses = 0, 0
		}
	}
	switch {
	case wins > 0:
		out.CurrentStreak = wins
	case losses > 0:
		out.CurrentStreak = -losses
	}
	return out
}

// FormatStreak renders a current streak for display.
func FormatStreak(streak int) string {
	switch {
	case streak == 0:
		return "none"
	case streak > 0:
		return fmt.Sprintf("%dW", streak)
	default:
		return fmt.Sprintf("%dL", -streak)
	}
}
