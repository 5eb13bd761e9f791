package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/replay"
	"github.com/vovakirdan/tilefall/internal/storage"
)

var flagSteps bool

var replayCmd = &cobra.Command{
	Use:   "replay <game-id>",
	Short: "Replay a journaled game",
	Long: `Rebuild the starting board of a journaled game and re-apply every move.

The final board is printed as text, top row first. With --steps every
intermediate board is printed too. The replay fails if a move no longer
removes the number of tiles the journal recorded.

Examples:
  tilefall replay 12
  tilefall replay 12 --steps`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagSteps, "steps", false, "Print the board after every move")
}

func runReplay(_ *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid game id %q\n", args[0])
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening game journal: %v\n", err)
		os.Exit(1)
	}

	rec, res, err := replay.Load(store, id)
	store.Close()
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Error: no game with id %d\n", id)
		fmt.Fprintln(os.Stderr, "Run 'tilefall history' to list games.")
		os.Exit(1)
	}
	if err != nil && rec.ID == 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Game %d: %s, %dx%d, dealt by %s\n", rec.ID, boardLabel(rec), rec.Width, rec.Height, rec.Player)
	fmt.Println()
	if flagSteps {
		fmt.Println("Start:")
		fmt.Println(core.RenderASCII(res.Initial))
		fmt.Println()
		for _, step := range res.Steps {
			fmt.Printf("Move %d: (%d,%d) removed %d", step.Move.Seq, step.Move.X, step.Move.Y, len(step.Removed))
			if step.Move.Player != "" {
				fmt.Printf(" by %s", step.Move.Player)
			}
			fmt.Println()
			fmt.Println(core.RenderASCII(step.Board))
			fmt.Println()
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Final board after %d moves:\n", len(res.Steps))
	fmt.Println(core.RenderASCII(res.Final))
}
