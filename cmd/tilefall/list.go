package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/layouts"
	"github.com/vovakirdan/tilefall/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List game modes and layouts",
	Long:  `Shows the registered game modes and every layout available to layout mode.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No game modes available.")
		return
	}

	fmt.Println("Game modes:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, g := range games {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, g := range games {
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, g.Title)
	}

	all, err := layouts.All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load layouts: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("Layouts:")
	fmt.Println()

	maxIDLen = 2
	for _, l := range all {
		if len(l.ID) > maxIDLen {
			maxIDLen = len(l.ID)
		}
	}
	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "ID", "Size", "Name")
	fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, "--", "----", "----")
	for _, l := range all {
		size := fmt.Sprintf("%dx%d", l.Board.Width, l.Board.Height)
		fmt.Printf("  %-*s  %-7s  %s\n", maxIDLen, l.ID, size, l.Name)
	}

	fmt.Println()
	fmt.Println("Run 'tilefall play' for a random board or 'tilefall play --layout <id>' for a layout.")
}
