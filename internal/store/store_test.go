package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tcgjournal/internal/journal"
	"github.com/verte-zerg/tcgjournal/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestLoadEmpty(t *testing.T) {
	st := openTestStore(t)
	snap, err := st.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Decks)
	assert.Empty(t, snap.Games)
}

func TestSaveOverwritesWholeCollection(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.SaveDecks(ctx, []model.Deck{{Name: "Red Zoro"}, {Name: "Green Law"}}))
	require.NoError(t, st.SaveDecks(ctx, []model.Deck{{Name: "Green Law"}}))
	require.NoError(t, st.SaveGames(ctx, []model.GameRecord{
		{ID: 1, Date: "2024-05-01", DeckUsed: "Green Law", Opponent: "Alice", Result: model.ResultWin, GameLength: 9, Mulligans: 1},
	}))

	snap, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Decks, 1)
	assert.Equal(t, "Green Law", snap.Decks[0].Name)
	require.Len(t, snap.Games, 1)
	assert.Equal(t, model.Count(9), snap.Games[0].GameLength)
	assert.Equal(t, model.Count(1), snap.Games[0].Mulligans)
}

func TestStoreAsJournalObserver(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	j := journal.New(model.Snapshot{},
		journal.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
		journal.WithObserver(st),
	)

	_, err := j.AddDeck(ctx, model.Deck{Name: "Red Zoro"})
	require.NoError(t, err)
	_, err = j.LogGame(ctx, model.GameRecord{DeckUsed: "Red Zoro", Opponent: "Alice", Result: model.ResultWin})
	require.NoError(t, err)

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, j.Snapshot(), loaded)

	_, err = j.DeleteDeck(ctx, "Red Zoro")
	require.NoError(t, err)
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Decks)
	assert.Empty(t, loaded.Games)
}

func TestLoadReportsCorruptValue(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	_, err := st.db.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)`, KeyGames, "{not json", "now")
	require.NoError(t, err)

	_, err = st.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyGames)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.SaveDecks(ctx, []model.Deck{{Name: "Red Zoro"}}))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	snap, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Decks, 1)
	assert.Equal(t, path, st.Path())
}
