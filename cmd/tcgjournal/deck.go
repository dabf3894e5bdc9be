package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tcgjournal/internal/form"
	"github.com/verte-zerg/tcgjournal/internal/model"
	"github.com/verte-zerg/tcgjournal/internal/stats"
)

var (
	deckColors      string
	deckLeader      string
	deckCardsPath   string
	deckInteractive bool
	deckYes         bool
)

func newDeckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}
	cmd.AddCommand(newDeckAddCmd())
	cmd.AddCommand(newDeckListCmd())
	cmd.AddCommand(newDeckShowCmd())
	cmd.AddCommand(newDeckDeleteCmd())
	return cmd
}

func newDeckAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [NAME]",
		Short: "Add a deck",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDeckAddCmd,
	}
	cmd.Flags().StringVar(&deckColors, "colors", "", "deck colors")
	cmd.Flags().StringVar(&deckLeader, "leader", "", "leader card")
	cmd.Flags().StringVar(&deckCardsPath, "cards", "", "file with the card list, one card per line (- for stdin)")
	cmd.Flags().BoolVarP(&deckInteractive, "interactive", "i", false, "enter the deck in a form")
	return cmd
}

func runDeckAddCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d := model.Deck{Colors: deckColors, Leader: deckLeader}
	if len(args) == 1 {
		d.Name = args[0]
	}
	if deckCardsPath != "" {
		cards, err := readCardList(cmd.InOrStdin(), deckCardsPath)
		if err != nil {
			return err
		}
		d.CardList = cards
	}

	if deckInteractive {
		fields := []form.Field{
			{Key: "name", Label: "Name", Value: d.Name, Required: true},
			{Key: "colors", Label: "Colors", Value: d.Colors, Placeholder: "Red/Green"},
			{Key: "leader", Label: "Leader", Value: d.Leader},
			{Key: "cards", Label: "Card list", Value: d.CardList, Multiline: true, Placeholder: "4x OP01-001 ..."},
		}
		var added model.Deck
		_, ok, err := form.Run("Add Deck", fields, func(v form.Values) error {
			var addErr error
			added, addErr = a.journal.AddDeck(cmd.Context(), model.Deck{
				Name:     v["name"],
				Colors:   v["colors"],
				Leader:   v["leader"],
				CardList: v["cards"],
			})
			return addErr
		})
		if err != nil {
			return fmt.Errorf("failed to run form: %w", err)
		}
		if !ok {
			return nil
		}
		return printDeckAdded(cmd.OutOrStdout(), added)
	}

	added, err := a.journal.AddDeck(cmd.Context(), d)
	if err != nil {
		return err
	}
	return printDeckAdded(cmd.OutOrStdout(), added)
}

func printDeckAdded(w io.Writer, d model.Deck) error {
	_, err := fmt.Fprintf(w, "Added deck %q (%d cards)\n", d.Name, stats.CardCount(d.CardList))
	return err
}

func readCardList(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(bufio.NewReader(stdin))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read card list: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func newDeckListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with their records",
		Args:  cobra.NoArgs,
		RunE:  runDeckListCmd,
	}
}

func runDeckListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	snap := a.journal.Snapshot()
	w := cmd.OutOrStdout()
	if len(snap.Decks) == 0 {
		_, err := fmt.Fprintln(w, "No decks yet. Add one with: tcgjournal deck add NAME")
		return err
	}
	records := stats.DeckStats(snap.Decks, snap.Games)
	headers := []string{"Deck", "Colors", "Leader", "Cards", "Created", "Games", "Win %"}
	rows := make([][]string, 0, len(snap.Decks))
	for i, d := range snap.Decks {
		rows = append(rows, []string{
			d.Name,
			d.Colors,
			d.Leader,
			fmt.Sprintf("%d", stats.CardCount(d.CardList)),
			d.DateCreated,
			fmt.Sprintf("%d", records[i].Total),
			fmt.Sprintf("%.1f%%", records[i].WinRate),
		})
	}
	return stats.WriteTable(w, headers, rows, map[int]bool{3: true, 5: true, 6: true})
}

func newDeckShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a deck, its card list and its record",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeckShowCmd,
	}
}

func runDeckShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d, ok := a.journal.Deck(args[0])
	if !ok {
		return fmt.Errorf("no deck named %q", args[0])
	}
	w := cmd.OutOrStdout()
	lines := []string{
		d.Name,
		"Colors: " + valueOrDash(d.Colors),
		"Leader: " + valueOrDash(d.Leader),
		"Created: " + valueOrDash(d.DateCreated),
		fmt.Sprintf("Cards: %d", stats.CardCount(d.CardList)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if strings.TrimSpace(d.CardList) != "" {
		if _, err := fmt.Fprintf(w, "Card List\n%s\n\n", d.CardList); err != nil {
			return err
		}
	}

	snap := a.journal.Snapshot()
	report := stats.NewReport(model.Snapshot{Decks: []model.Deck{d}, Games: snap.Games}, model.StatsFilter{Deck: d.Name}, a.recent())
	if err := stats.RenderSummary(w, report); err != nil {
		return err
	}
	if err := stats.RenderOpponentTable(w, report.Opponents); err != nil {
		return err
	}
	return stats.RenderRecent(w, report.Recent)
}

func valueOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func newDeckDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a deck and every game played with it",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeckDeleteCmd,
	}
	cmd.Flags().BoolVarP(&deckYes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runDeckDeleteCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	name := args[0]
	if _, ok := a.journal.Deck(name); ok && !deckYes {
		played := len(stats.FilterGames(a.journal.Snapshot().Games, model.StatsFilter{Deck: name}))
		prompt := fmt.Sprintf("Delete deck %q and its %d game(s)?", name, played)
		confirmed, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
		if err != nil {
			return err
		}
		if !confirmed {
			logErrln("Aborted.")
			return nil
		}
	}
	removed, err := a.journal.DeleteDeck(cmd.Context(), name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted deck %q and %d game(s)\n", name, removed)
	return err
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprintf(out, "%s [y/N] ", prompt); err != nil {
		return false, err
	}
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
