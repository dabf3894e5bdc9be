// Package model defines shared data structures.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for decks and games.
const DateLayout = "2006-01-02"

// Result is the outcome of a single game.
type Result string

const (
	ResultWin  Result = "Win"
	ResultLoss Result = "Loss"
	ResultDraw Result = "Draw"
)

// Results lists the valid results in display order.
var Results = []Result{ResultWin, ResultLoss, ResultDraw}

// Valid reports whether r is one of Win, Loss or Draw.
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

// ParseResult accepts a result name case-insensitively, plus the W/L/D shorthands.
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win", "w":
		return ResultWin, nil
	case "loss", "l":
		return ResultLoss, nil
	case "draw", "d":
		return ResultDraw, nil
	}
	return "", fmt.Errorf("unknown result %q (use Win, Loss or Draw)", s)
}

// Deck is a named card configuration. Name is unique within a deck list.
type Deck struct {
	Name        string `json:"name"`
	Colors      string `json:"colors"`
	Leader      string `json:"leader"`
	CardList    string `json:"cardList"`
	DateCreated string `json:"dateCreated"`
}

// GameRecord is one logged match outcome.
type GameRecord struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	DeckUsed     string `json:"deckUsed"`
	Opponent     string `json:"opponent"`
	OpponentDeck string `json:"opponentDeck"`
	Result       Result `json:"result"`
	GameLength   Count  `json:"gameLength"`
	Mulligans    Count  `json:"mulligans"`
	Notes        string `json:"notes"`
}

// DeckKey returns the identifier games use to reference d.
func DeckKey(d Deck) string {
	return d.Name
}

// GameDeckKey returns the deck identifier a game points at.
func GameDeckKey(g GameRecord) string {
	return g.DeckUsed
}

// Snapshot is an immutable copy of the journal collections.
type Snapshot struct {
	Decks []Deck
	Games []GameRecord
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Decks: append([]Deck(nil), s.Decks...),
		Games: append([]GameRecord(nil), s.Games...),
	}
}

// Count is a non-negative-ish numeric field that tolerates the text form
// older journals stored ("" or "12") as well as plain JSON numbers.
type Count int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*c = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid count %q", s)
		}
		*c = Count(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid count %s", string(data))
	}
	*c = Count(n)
	return nil
}

// DeckStats is the per-deck record.
type DeckStats struct {
	Name    string  `json:"name"`
	Colors  string  `json:"colors"`
	Leader  string  `json:"leader"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Draws   int     `json:"draws"`
	Total   int     `json:"total"`
	WinRate float64 `json:"winRate"`
}

// OpponentStats is the head-to-head record against one opponent.
type OpponentStats struct {
	Opponent string  `json:"opponent"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Draws    int     `json:"draws"`
	Total    int     `json:"total"`
	WinRate  float64 `json:"winRate"`
}

// TimelineEntry tallies results for one play date.
type TimelineEntry struct {
	Date   string `json:"date"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
}

// OverallStats summarizes the whole game log.
type OverallStats struct {
	TotalGames     int     `json:"totalGames"`
	TotalWins      int     `json:"totalWins"`
	TotalLosses    int     `json:"totalLosses"`
	TotalDraws     int     `json:"totalDraws"`
	OverallWinRate float64 `json:"overallWinRate"`
}

// StreakStats holds win/loss streaks in log order.
// CurrentStreak is positive for wins and negative for losses.
type StreakStats struct {
	CurrentStreak     int
	LongestWinStreak  int
	LongestLossStreak int
}

// StatsFilter narrows the game log before aggregation.
type StatsFilter struct {
	Deck     string
	Opponent string
	Since    *time.Time
	Last     int
}

// Active reports whether any filter field is set.
func (f StatsFilter) Active() bool {
	return f.Deck != "" || f.Opponent != "" || f.Since != nil || f.Last > 0
}
