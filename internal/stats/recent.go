package stats

import (
	"strings"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

// RecentGames returns the last n games of the log, newest first.
func RecentGames(games []model.GameRecord, n int) []model.GameRecord {
	if n <= 0 || len(games) == 0 {
		return nil
	}
	if n > len(games) {
		n = len(games)
	}
	out := make([]model.GameRecord, 0, n)
	for i := len(games) - 1; i >= len(games)-n; i-- {
		out = append(out, games[i])
	}
	return out
}

// CardCount counts the non-blank lines of a deck's card list.
func CardCount(cardList string) int {
	count := 0
	for _, line := range strings.Split(cardList, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
