package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tcgjournal/internal/journal"
	"github.com/verte-zerg/tcgjournal/internal/model"
)

var exportTime = time.Date(2024, 6, 1, 9, 30, 15, 250_000_000, time.UTC)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Decks: []model.Deck{{Name: "Red Zoro", Colors: "Red", Leader: "Zoro", CardList: "4x A\n4x B", DateCreated: "2024-05-01"}},
		Games: []model.GameRecord{{
			ID: 1717000000000, Date: "2024-05-02", DeckUsed: "Red Zoro", Opponent: "Alice",
			OpponentDeck: "Purple Doflamingo", Result: model.ResultWin, GameLength: 8, Mulligans: 1, Notes: "close",
		}},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "one-piece-tcg-journal-2024-06-01.txt", FileName(exportTime))
}

func TestExportEnvelope(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleSnapshot(), exportTime))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n  \"deckList\": ["), "expected two-space indented output, got %q", out[:20])

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Equal(t, "2024-06-01T09:30:15.250Z", doc["exportDate"])
	assert.Len(t, doc["deckList"], 1)
	assert.Len(t, doc["gameLog"], 1)
}

func TestExportEmptyWritesArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, model.Snapshot{}, exportTime))
	assert.Contains(t, buf.String(), `"deckList": []`)
	assert.Contains(t, buf.String(), `"gameLog": []`)
}

func TestExportImportKeepsCollections(t *testing.T) {
	snap := sampleSnapshot()
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, snap, exportTime))

	doc, err := Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, doc.Snapshot())
	assert.Equal(t, Version, doc.Version)
}

func TestImportAcceptsTextCounts(t *testing.T) {
	payload := `{
	  "deckList": [{"name": "Red Zoro"}],
	  "gameLog": [
	    {"id": 1, "deckUsed": "Red Zoro", "opponent": "Alice", "result": "Win", "gameLength": "", "mulligans": "2"},
	    {"id": 2, "deckUsed": "Red Zoro", "opponent": "Bob", "result": "Loss", "gameLength": "12", "mulligans": 0}
	  ]
	}`
	doc, err := Import(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.GameLog, 2)
	assert.Equal(t, model.Count(0), doc.GameLog[0].GameLength)
	assert.Equal(t, model.Count(2), doc.GameLog[0].Mulligans)
	assert.Equal(t, model.Count(12), doc.GameLog[1].GameLength)
}

func TestImportRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "hello"},
		{name: "missing game log", payload: `{"deckList": []}`},
		{name: "missing deck list", payload: `{"gameLog": []}`},
		{name: "null deck list", payload: `{"deckList": null, "gameLog": []}`},
		{name: "deck list not array", payload: `{"deckList": {}, "gameLog": []}`},
		{name: "bad count", payload: `{"deckList": [], "gameLog": [{"gameLength": "long"}]}`},
		{name: "duplicate deck", payload: `{"deckList": [{"name": "Red Zoro"}, {"name": "Red Zoro"}], "gameLog": []}`},
		{name: "blank deck name", payload: `{"deckList": [{"name": "  "}], "gameLog": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, journal.ErrImportFormat))
		})
	}
}

func TestExportFileIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportFile(dir, sampleSnapshot(), exportTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName(exportTime)), path)

	doc, err := ImportFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.DeckList, 1)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestImportFileMissing(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, journal.ErrImportFormat))
}
