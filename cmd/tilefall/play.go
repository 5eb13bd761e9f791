package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/platform/tui"
	"github.com/vovakirdan/tilefall/internal/registry"
	"github.com/vovakirdan/tilefall/internal/storage"
)

var flagLayout string

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a board",
	Long: `Start playing tilefall. The mode defaults to a random board.

Controls:
  Arrows/WASD/HJKL - Move cursor
  Space/Enter      - Remove the group under the cursor
  Mouse click      - Remove the group under the pointer
  R                - Deal a new board
  P                - Pause
  ?                - Toggle help
  Esc              - Back
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - 3 colours
  normal - 4 colours
  hard   - 5 colours
  fixed  - Colour count from the config

Examples:
  tilefall play
  tilefall play --difficulty easy --width 8 --height 8
  tilefall play --seed 42
  tilefall play tilefall_layout
  tilefall play tilefall_layout --layout 03-pyramid`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagLayout, "layout", "", "Layout ID for layout mode (picker if empty)")
}

// runtimeConfig builds the runtime config from the terminal and global flags.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     seed,
	}
}

// openStore opens the journal. Failure is only a warning; games still work.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open game journal: %v\n", err)
		return nil
	}
	return store
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := tilefall.IDRandom
	if len(args) == 1 {
		gameID = args[0]
	}
	if flagLayout != "" {
		gameID = tilefall.IDLayout
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'tilefall list' to see available modes.")
		os.Exit(1)
	}

	cfg := runtimeConfig()

	var game registry.Game
	if gameID == tilefall.IDLayout {
		layoutID := flagLayout
		if layoutID == "" {
			id, quit, err := tui.RunLayoutSelector(cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if quit || id == "" {
				return
			}
			layoutID = id
		}
		game = tilefall.NewLayoutWith(layoutID)
	} else {
		g, err := registry.Create(gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			os.Exit(1)
		}
		game = g
	}

	store := openStore()

	_, runErr := tui.Run(game, store, cfg, playerName())

	// Close store before potential exit
	closeStore(store)

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
