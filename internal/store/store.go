// Package store handles SQLite persistence of the journal collections.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tcgjournal/internal/journal"
	"github.com/verte-zerg/tcgjournal/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Keys under which the two collections are stored.
const (
	KeyDecks = "opTcgDecks"
	KeyGames = "opTcgGames"
)

// Store is a small key-value table holding each collection as a JSON array.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads both collections. Missing keys load as empty collections.
func (s *Store) Load(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	if err := s.get(ctx, KeyDecks, &snap.Decks); err != nil {
		return model.Snapshot{}, err
	}
	if err := s.get(ctx, KeyGames, &snap.Games); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// SaveDecks overwrites the stored deck list.
func (s *Store) SaveDecks(ctx context.Context, decks []model.Deck) error {
	if decks == nil {
		decks = []model.Deck{}
	}
	return s.put(ctx, KeyDecks, decks)
}

// SaveGames overwrites the stored game log.
func (s *Store) SaveGames(ctx context.Context, games []model.GameRecord) error {
	if games == nil {
		games = []model.GameRecord{}
	}
	return s.put(ctx, KeyGames, games)
}

// OnChange persists the changed collection, making the store a journal observer.
func (s *Store) OnChange(ctx context.Context, change journal.Change) error {
	switch change.Collection {
	case journal.CollectionDecks:
		return s.SaveDecks(ctx, change.Snapshot.Decks)
	case journal.CollectionGames:
		return s.SaveGames(ctx, change.Snapshot.Games)
	default:
		return fmt.Errorf("unknown collection %q", change.Collection)
	}
}

func (s *Store) get(ctx context.Context, key string, dst any) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, value any) (err error) {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return tx.Commit()
}
