package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilefall/internal/storage"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled games",
	Long: `Display the most recent games from the journal with their progress.

Examples:
  tilefall history
  tilefall history --limit 50
  tilefall history --db ./journal.db`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of games to show")
}

func runHistory(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening game journal: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	games, err := store.RecentGames(flagHistoryLimit)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error retrieving games: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Tilefall history")
	fmt.Println()

	if len(games) == 0 {
		fmt.Println("No games journaled yet.")
		fmt.Println()
		fmt.Println("Play 'tilefall play' to deal the first board!")
		return
	}

	fmt.Printf("  %-5s  %-16s  %-6s  %-5s  %-9s  %-10s  %s\n", "ID", "Board", "Size", "Moves", "Cleared", "Player", "Date")
	fmt.Printf("  %-5s  %-16s  %-6s  %-5s  %-9s  %-10s  %s\n", "--", "-----", "----", "-----", "-------", "------", "----")
	for _, g := range games {
		fmt.Printf("  %-5d  %-16s  %-6s  %-5d  %-9s  %-10s  %s\n",
			g.ID,
			boardLabel(g.GameRecord),
			fmt.Sprintf("%dx%d", g.Width, g.Height),
			g.Moves,
			clearedLabel(g),
			g.Player,
			g.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	stats, err := store.Stats()
	if err == nil {
		fmt.Println()
		fmt.Printf("Games: %d  Moves: %d  Tiles cleared: %d  Boards cleared: %d\n",
			stats.Games, stats.Moves, stats.TilesCleared, stats.BoardsCleared)
	}
	fmt.Println()
	fmt.Println("Run 'tilefall replay <id>' to replay a game.")
}

func boardLabel(g storage.GameRecord) string {
	switch {
	case g.Mode == storage.ModeShared:
		return "table " + g.TableCode
	case g.LayoutID != "":
		return g.LayoutID
	default:
		return fmt.Sprintf("seed %d", g.Seed%100000)
	}
}

func clearedLabel(g storage.GameSummary) string {
	if g.Finished() {
		return "all"
	}
	return fmt.Sprintf("%d/%d", g.Cleared, g.Tiles)
}
