package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tcgjournal/internal/form"
	"github.com/verte-zerg/tcgjournal/internal/journal"
	"github.com/verte-zerg/tcgjournal/internal/model"
	"github.com/verte-zerg/tcgjournal/internal/stats"
)

var (
	gameDate         string
	gameDeck         string
	gameOpponent     string
	gameOpponentDeck string
	gameResult       string
	gameLength       int
	gameMulligans    int
	gameNotes        string
	gameInteractive  bool

	gameListDeck     string
	gameListOpponent string
	gameListLast     int
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Log and manage games",
	}
	cmd.AddCommand(newGameLogCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameDeleteCmd())
	return cmd
}

func newGameLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a game",
		Args:  cobra.NoArgs,
		RunE:  runGameLogCmd,
	}
	cmd.Flags().StringVar(&gameDate, "date", "", "play date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&gameDeck, "deck", "", "deck used")
	cmd.Flags().StringVar(&gameOpponent, "opponent", "", "opponent name")
	cmd.Flags().StringVar(&gameOpponentDeck, "opponent-deck", "", "opponent's deck")
	cmd.Flags().StringVar(&gameResult, "result", "", "Win, Loss or Draw (W/L/D)")
	cmd.Flags().IntVar(&gameLength, "length", 0, "game length in turns")
	cmd.Flags().IntVar(&gameMulligans, "mulligans", 0, "number of mulligans")
	cmd.Flags().StringVar(&gameNotes, "notes", "", "free-form notes")
	cmd.Flags().BoolVarP(&gameInteractive, "interactive", "i", false, "enter the game in a form")
	return cmd
}

func runGameLogCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if gameInteractive {
		return runGameForm(cmd, a)
	}

	g := model.GameRecord{
		Date:         gameDate,
		DeckUsed:     gameDeck,
		Opponent:     gameOpponent,
		OpponentDeck: gameOpponentDeck,
		GameLength:   model.Count(gameLength),
		Mulligans:    model.Count(gameMulligans),
		Notes:        gameNotes,
	}
	if strings.TrimSpace(gameResult) != "" {
		result, err := model.ParseResult(gameResult)
		if err != nil {
			return journal.ValidationFailed("result", err.Error())
		}
		g.Result = result
	}
	logged, err := a.journal.LogGame(cmd.Context(), g)
	if err != nil {
		return err
	}
	return printGameLogged(cmd, logged)
}

func runGameForm(cmd *cobra.Command, a *app) error {
	snap := a.journal.Snapshot()
	if len(snap.Decks) == 0 {
		return fmt.Errorf("add a deck before logging games: tcgjournal deck add NAME")
	}
	deckNames := make([]string, len(snap.Decks))
	for i, d := range snap.Decks {
		deckNames[i] = model.DeckKey(d)
	}
	results := make([]string, len(model.Results))
	for i, r := range model.Results {
		results[i] = string(r)
	}
	date := gameDate
	if date == "" {
		date = model.Today(time.Now())
	}
	fields := []form.Field{
		{Key: "date", Label: "Date", Value: date, Placeholder: model.DateLayout},
		{Key: "deck", Label: "Deck", Value: gameDeck, Required: true, Options: deckNames},
		{Key: "opponent", Label: "Opponent", Value: gameOpponent, Required: true},
		{Key: "opponentDeck", Label: "Opponent deck", Value: gameOpponentDeck},
		{Key: "result", Label: "Result", Value: gameResult, Required: true, Options: results},
		{Key: "length", Label: "Length (turns)", Value: countValue(gameLength)},
		{Key: "mulligans", Label: "Mulligans", Value: strconv.Itoa(gameMulligans)},
		{Key: "notes", Label: "Notes", Value: gameNotes, Multiline: true},
	}

	var logged model.GameRecord
	_, ok, err := form.Run("Log Game", fields, func(v form.Values) error {
		g, err := gameFromValues(v)
		if err != nil {
			return err
		}
		logged, err = a.journal.LogGame(cmd.Context(), g)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to run form: %w", err)
	}
	if !ok {
		return nil
	}
	return printGameLogged(cmd, logged)
}

func countValue(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func gameFromValues(v form.Values) (model.GameRecord, error) {
	g := model.GameRecord{
		Date:         v["date"],
		DeckUsed:     v["deck"],
		Opponent:     v["opponent"],
		OpponentDeck: v["opponentDeck"],
		Notes:        v["notes"],
	}
	result, err := model.ParseResult(v["result"])
	if err != nil {
		return model.GameRecord{}, journal.ValidationFailed("result", err.Error())
	}
	g.Result = result
	if g.GameLength, err = parseCount("length", v["length"]); err != nil {
		return model.GameRecord{}, err
	}
	if g.Mulligans, err = parseCount("mulligans", v["mulligans"]); err != nil {
		return model.GameRecord{}, err
	}
	return g, nil
}

func parseCount(field, s string) (model.Count, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, journal.ValidationFailed(field, fmt.Sprintf("%s must be a whole number", field))
	}
	return model.Count(n), nil
}

func printGameLogged(cmd *cobra.Command, g model.GameRecord) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Logged game %d: %s vs %s (%s) on %s\n", g.ID, g.DeckUsed, g.Opponent, g.Result, g.Date)
	return err
}

func newGameListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged games, newest first",
		Args:  cobra.NoArgs,
		RunE:  runGameListCmd,
	}
	cmd.Flags().StringVar(&gameListDeck, "deck", "", "only games with this deck")
	cmd.Flags().StringVar(&gameListOpponent, "opponent", "", "only games against this opponent")
	cmd.Flags().IntVar(&gameListLast, "last", 0, "limit to the last N games")
	return cmd
}

func runGameListCmd(cmd *cobra.Command, _ []string) error {
	filter, err := parseFilter(gameListDeck, gameListOpponent, "", gameListLast)
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	games := stats.FilterGames(a.journal.Snapshot().Games, filter)
	w := cmd.OutOrStdout()
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games logged.")
		return err
	}
	newest := stats.RecentGames(games, len(games))
	return stats.WriteTable(w, stats.GameHeaders(), stats.GameRows(newest), map[int]bool{0: true})
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a logged game",
		Args:  cobra.ExactArgs(1),
		RunE:  runGameDeleteCmd,
	}
}

func runGameDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id %q", args[0])
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.journal.DeleteGame(cmd.Context(), id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted game %d\n", id)
	return err
}
