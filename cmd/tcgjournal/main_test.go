package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t      *testing.T
	db     string
	config string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	return &cli{
		t:      t,
		db:     filepath.Join(dir, "journal.db"),
		config: filepath.Join(dir, "config.toml"),
	}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", c.db, "--config", c.config}, args...))
	err := root.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, "tcgjournal %s", strings.Join(args, " "))
	return out
}

func seedJournal(c *cli) {
	c.mustRun("deck", "add", "Red Zoro", "--colors", "Red", "--leader", "Zoro")
	c.mustRun("deck", "add", "Green Law")
	c.mustRun("game", "log", "--deck", "Red Zoro", "--opponent", "Alice", "--result", "w", "--date", "2024-05-01")
	c.mustRun("game", "log", "--deck", "Red Zoro", "--opponent", "Bob", "--result", "Loss", "--date", "2024-05-02", "--length", "9")
	c.mustRun("game", "log", "--deck", "Green Law", "--opponent", "Alice", "--result", "draw", "--date", "2024-05-02")
}

func TestDeckAddAndList(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("deck", "add", "Red Zoro", "--colors", "Red")
	assert.Contains(t, out, `Added deck "Red Zoro"`)

	_, err := c.run("", "deck", "add", "Red Zoro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = c.run("", "deck", "add", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please enter a deck name")

	out = c.mustRun("deck", "list")
	assert.Contains(t, out, "Red Zoro")
	assert.Contains(t, out, "0.0%")
}

func TestDeckAddReadsCardList(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("4x OP01-001\n\n2x OP01-002\n", "deck", "add", "Red Zoro", "--cards", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 cards)")
}

func TestGameLogValidation(t *testing.T) {
	c := newCLI(t)
	c.mustRun("deck", "add", "Red Zoro")

	_, err := c.run("", "game", "log", "--deck", "Red Zoro")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opponent")

	_, err = c.run("", "game", "log", "--deck", "Red Zoro", "--opponent", "Alice", "--result", "forfeit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown result")

	_, err = c.run("", "game", "log", "--deck", "Blue Nami", "--opponent", "Alice", "--result", "win")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no deck named")
}

func TestStatsPlain(t *testing.T) {
	c := newCLI(t)
	seedJournal(c)

	out := c.mustRun("stats", "--plain", "--bar-width", "20")
	assert.Contains(t, out, "Games: 3")
	assert.Contains(t, out, "Win Rate: 50.0%")
	assert.Contains(t, out, "Record: 1-1-1")
	assert.Contains(t, out, "Decks: 2")
	assert.Contains(t, out, "Opponents: 2")

	out = c.mustRun("stats", "--plain", "--opponent", "Alice")
	assert.Contains(t, out, "Filter: opponent=Alice")
	assert.Contains(t, out, "Games: 2")
	assert.Contains(t, out, "Win Rate: 100.0%")
}

func TestStatsJSON(t *testing.T) {
	c := newCLI(t)
	seedJournal(c)

	out := c.mustRun("stats", "--json")
	var got reportJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Overall.TotalGames)
	assert.Equal(t, 50.0, got.Overall.OverallWinRate)
	require.Len(t, got.Decks, 2)
	assert.Equal(t, "Red Zoro", got.Decks[0].Name)
	assert.Equal(t, 50.0, got.Decks[0].WinRate)
	require.Len(t, got.Timeline, 2)
	assert.Equal(t, "2024-05-01", got.Timeline[0].Date)

	_, err := c.run("", "stats", "--json", "--since", "May 1")
	require.Error(t, err)
}

func TestExportImport(t *testing.T) {
	c := newCLI(t)
	seedJournal(c)

	outDir := t.TempDir()
	out := c.mustRun("export", "--out", outDir)
	assert.Contains(t, out, "Exported 2 decks and 3 games")
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "one-piece-tcg-journal-"))

	other := newCLI(t)
	other.mustRun("deck", "add", "Old Deck")
	out = other.mustRun("import", filepath.Join(outDir, entries[0].Name()), "--yes")
	assert.Contains(t, out, "Imported 2 decks and 3 games")

	out = other.mustRun("deck", "list")
	assert.NotContains(t, out, "Old Deck")
	assert.Contains(t, out, "Green Law")
}

func TestImportRejectsBadFileKeepsData(t *testing.T) {
	c := newCLI(t)
	c.mustRun("deck", "add", "Red Zoro")
	bad := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte(`{"deckList": []}`), 0o644))

	_, err := c.run("", "import", bad, "--yes")
	require.Error(t, err)
	assert.Contains(t, c.mustRun("deck", "list"), "Red Zoro")
}

func TestDeckDeleteConfirms(t *testing.T) {
	c := newCLI(t)
	seedJournal(c)

	out, err := c.run("n\n", "deck", "delete", "Red Zoro")
	require.NoError(t, err)
	assert.Contains(t, out, `Delete deck "Red Zoro" and its 2 game(s)?`)
	assert.Contains(t, c.mustRun("deck", "list"), "Red Zoro")

	out = c.mustRun("deck", "delete", "Red Zoro", "--yes")
	assert.Contains(t, out, "and 2 game(s)")

	out = c.mustRun("stats", "--plain")
	assert.Contains(t, out, "Games: 1")
	assert.Contains(t, out, "Opponents: 1")

	_, err = c.run("", "deck", "delete", "Red Zoro", "--yes")
	require.Error(t, err)
}

func TestGameListAndDelete(t *testing.T) {
	c := newCLI(t)
	seedJournal(c)

	out := c.mustRun("game", "list", "--opponent", "Alice")
	assert.Contains(t, out, "Green Law")
	assert.NotContains(t, out, "Bob")

	_, err := c.run("", "game", "delete", "12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = c.run("", "game", "delete", "abc")
	require.Error(t, err)
}

func TestChartsWritesFiles(t *testing.T) {
	c := newCLI(t)
	seedJournal(c)
	outDir := filepath.Join(t.TempDir(), "charts")

	out := c.mustRun("charts", "--out", outDir)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, p := range lines {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}
}

func TestConfigValuesApplyUnlessFlagSet(t *testing.T) {
	c := newCLI(t)
	other := filepath.Join(t.TempDir(), "from-config.db")
	require.NoError(t, os.WriteFile(c.config, []byte("[journal]\ndb-path = \""+other+"\"\n\n[stats]\nrecent = 1\n"), 0o644))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", c.config, "deck", "add", "Red Zoro"})
	require.NoError(t, root.Execute())
	_, err := os.Stat(other)
	require.NoError(t, err, "config db-path should be used when --db is not set")

	c.mustRun("deck", "add", "Green Law")
	out.Reset()
	out.WriteString(c.mustRun("deck", "list"))
	assert.NotContains(t, out.String(), "Red Zoro")
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter(" Red Zoro ", "", "2024-05-01", 3)
	require.NoError(t, err)
	assert.Equal(t, "Red Zoro", f.Deck)
	require.NotNil(t, f.Since)
	assert.Equal(t, "2024-05-01T00:00:00Z", f.Since.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, 3, f.Last)

	_, err = parseFilter("", "", "", -1)
	require.Error(t, err)
	_, err = parseFilter("", "", "01/05/2024", 0)
	require.Error(t, err)
}
