// Package journal holds the deck list and game log and validates every write.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/tcgjournal/internal/model"
)

// Journal is the authoritative in-memory state. It is not safe for
// concurrent use; callers own it and drive it from one goroutine.
type Journal struct {
	decks     []model.Deck
	games     []model.GameRecord
	observers []Observer
	now       func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the clock used for creation dates and game ids.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(j *Journal) {
		j.observers = append(j.observers, o)
	}
}

// New builds a journal from loaded collections. The slices are copied.
func New(snap model.Snapshot, opts ...Option) *Journal {
	c := snap.Clone()
	j := &Journal{decks: c.Decks, games: c.Games, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Subscribe registers an observer for future changes.
func (j *Journal) Subscribe(o Observer) {
	j.observers = append(j.observers, o)
}

// Snapshot returns a copy of both collections.
func (j *Journal) Snapshot() model.Snapshot {
	return model.Snapshot{Decks: j.decks, Games: j.games}.Clone()
}

// Deck looks a deck up by its key.
func (j *Journal) Deck(name string) (model.Deck, bool) {
	i := j.deckIndex(name)
	if i < 0 {
		return model.Deck{}, false
	}
	return j.decks[i], true
}

func (j *Journal) deckIndex(name string) int {
	for i, d := range j.decks {
		if model.DeckKey(d) == name {
			return i
		}
	}
	return -1
}

// AddDeck validates and appends a deck, stamping its creation date.
func (j *Journal) AddDeck(ctx context.Context, d model.Deck) (model.Deck, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return model.Deck{}, ValidationFailed("name", "please enter a deck name")
	}
	if j.deckIndex(d.Name) >= 0 {
		return model.Deck{}, Duplicate("deck", d.Name)
	}
	d.DateCreated = model.Today(j.now())
	j.decks = append(j.decks, d)
	return d, j.notify(ctx, CollectionDecks)
}

// DeleteDeck removes a deck and every game played with it. It returns the
// number of games removed.
func (j *Journal) DeleteDeck(ctx context.Context, name string) (int, error) {
	i := j.deckIndex(name)
	if i < 0 {
		return 0, NotFound("deck", fmt.Sprintf("%q", name))
	}
	j.decks = append(j.decks[:i:i], j.decks[i+1:]...)

	kept := make([]model.GameRecord, 0, len(j.games))
	for _, g := range j.games {
		if model.GameDeckKey(g) != name {
			kept = append(kept, g)
		}
	}
	removed := len(j.games) - len(kept)
	j.games = kept

	err := j.notify(ctx, CollectionDecks)
	if removed > 0 {
		err = errors.Join(err, j.notify(ctx, CollectionGames))
	}
	return removed, err
}

// LogGame validates and appends a game record, assigning its id. A blank
// date means today.
func (j *Journal) LogGame(ctx context.Context, g model.GameRecord) (model.GameRecord, error) {
	g.DeckUsed = strings.TrimSpace(g.DeckUsed)
	g.Opponent = strings.TrimSpace(g.Opponent)
	g.Date = strings.TrimSpace(g.Date)

	var missing []string
	if g.DeckUsed == "" {
		missing = append(missing, "deck")
	}
	if g.Opponent == "" {
		missing = append(missing, "opponent")
	}
	if g.Result == "" {
		missing = append(missing, "result")
	}
	if len(missing) > 0 {
		return model.GameRecord{}, MissingFields(missing...)
	}
	if !g.Result.Valid() {
		return model.GameRecord{}, ValidationFailed("result", fmt.Sprintf("unknown result %q (use Win, Loss or Draw)", g.Result))
	}
	if j.deckIndex(g.DeckUsed) < 0 {
		return model.GameRecord{}, ValidationFailed("deck", fmt.Sprintf("no deck named %q", g.DeckUsed))
	}
	if g.Date == "" {
		g.Date = model.Today(j.now())
	} else if _, ok := model.ParseDate(g.Date); !ok {
		return model.GameRecord{}, ValidationFailed("date", fmt.Sprintf("unrecognized date %q (use YYYY-MM-DD)", g.Date))
	}

	g.ID = j.nextID()
	j.games = append(j.games, g)
	return g, j.notify(ctx, CollectionGames)
}

// nextID uses the millisecond clock, bumped past any existing id.
func (j *Journal) nextID() int64 {
	id := j.now().UnixMilli()
	for _, g := range j.games {
		if g.ID >= id {
			id = g.ID + 1
		}
	}
	return id
}

// DeleteGame removes the game with the given id.
func (j *Journal) DeleteGame(ctx context.Context, id int64) error {
	for i, g := range j.games {
		if g.ID == id {
			j.games = append(j.games[:i:i], j.games[i+1:]...)
			return j.notify(ctx, CollectionGames)
		}
	}
	return NotFound("game", fmt.Sprintf("%d", id))
}

// Replace swaps both collections wholesale, as an import does.
func (j *Journal) Replace(ctx context.Context, snap model.Snapshot) error {
	c := snap.Clone()
	j.decks = c.Decks
	j.games = c.Games
	return errors.Join(
		j.notify(ctx, CollectionDecks),
		j.notify(ctx, CollectionGames),
	)
}
