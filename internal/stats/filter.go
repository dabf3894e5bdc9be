package stats

import (
	"github.com/verte-zerg/tcgjournal/internal/model"
)

// FilterGames returns the games matching f, preserving log order. Last is
// applied after the other criteria.
func FilterGames(games []model.GameRecord, f model.StatsFilter) []model.GameRecord {
	out := make([]model.GameRecord, 0, len(games))
	for _, g := range games {
		if f.Deck != "" && model.GameDeckKey(g) != f.Deck {
			continue
		}
		if f.Opponent != "" && g.Opponent != f.Opponent {
			continue
		}
		if f.Since != nil {
			played, ok := model.ParseDate(g.Date)
			if !ok || played.Before(*f.Since) {
				continue
			}
		}
		out = append(out, g)
	}
	if f.Last > 0 && len(out) > f.Last {
		out = out[len(out)-f.Last:]
	}
	return out
}
