// Package transfer exports and imports the journal as a JSON document.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tcgjournal/internal/journal"
	"github.com/verte-zerg/tcgjournal/internal/model"
)

// Version is written into every export. Imports do not check it.
const Version = "1.0"

// Document is the export envelope.
type Document struct {
	DeckList   []model.Deck       `json:"deckList"`
	GameLog    []model.GameRecord `json:"gameLog"`
	ExportDate string             `json:"exportDate"`
	Version    string             `json:"version"`
}

// FileName returns the default export file name for the given day.
func FileName(now time.Time) string {
	return fmt.Sprintf("one-piece-tcg-journal-%s.txt", model.Today(now))
}

// Export writes snap as pretty-printed JSON.
func Export(w io.Writer, snap model.Snapshot, now time.Time) error {
	doc := Document{
		DeckList:   snap.Decks,
		GameLog:    snap.Games,
		ExportDate: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Version:    Version,
	}
	if doc.DeckList == nil {
		doc.DeckList = []model.Deck{}
	}
	if doc.GameLog == nil {
		doc.GameLog = []model.GameRecord{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportFile writes the export to path. When path is a directory, the
// default file name is used inside it. It returns the file written.
func ExportFile(path string, snap model.Snapshot, now time.Time) (string, error) {
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName(now))
	}
	var buf bytes.Buffer
	if err := Export(&buf, snap, now); err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// Import parses an export document. Both deckList and gameLog must be
// present; any failure is an import format error and nothing is returned.
func Import(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, journal.ImportFailed("failed to read import", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, journal.ImportFailed("not a valid journal export", err)
	}
	deckRaw, okDecks := raw["deckList"]
	gameRaw, okGames := raw["gameLog"]
	if !okDecks || !okGames || isNull(deckRaw) || isNull(gameRaw) {
		return Document{}, journal.ImportFailed("invalid file format: deckList and gameLog are required", nil)
	}

	var doc Document
	if err := json.Unmarshal(deckRaw, &doc.DeckList); err != nil {
		return Document{}, journal.ImportFailed("invalid deckList", err)
	}
	if err := json.Unmarshal(gameRaw, &doc.GameLog); err != nil {
		return Document{}, journal.ImportFailed("invalid gameLog", err)
	}
	if err := checkDeckNames(doc.DeckList); err != nil {
		return Document{}, err
	}
	if v, ok := raw["version"]; ok {
		_ = json.Unmarshal(v, &doc.Version)
	}
	if v, ok := raw["exportDate"]; ok {
		_ = json.Unmarshal(v, &doc.ExportDate)
	}
	if doc.DeckList == nil {
		doc.DeckList = []model.Deck{}
	}
	if doc.GameLog == nil {
		doc.GameLog = []model.GameRecord{}
	}
	return doc, nil
}

// checkDeckNames keeps deck names non-blank and unique, as AddDeck does.
func checkDeckNames(decks []model.Deck) error {
	seen := make(map[string]bool, len(decks))
	for i, d := range decks {
		key := model.DeckKey(d)
		if strings.TrimSpace(key) == "" {
			return journal.ImportFailed(fmt.Sprintf("deck %d has no name", i+1), nil)
		}
		if seen[key] {
			return journal.ImportFailed(fmt.Sprintf("duplicate deck name %q", key), nil)
		}
		seen[key] = true
	}
	return nil
}

// ImportFile opens path and imports it.
func ImportFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, journal.ImportFailed("failed to open import file", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for a read-only file.
			_ = cerr
		}
	}()
	return Import(f)
}

// Snapshot returns the document's collections.
func (d Document) Snapshot() model.Snapshot {
	return model.Snapshot{Decks: d.DeckList, Games: d.GameLog}
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "export-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
