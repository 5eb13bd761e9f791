package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/platform/tui"
	"github.com/vovakirdan/tilefall/internal/registry"
	"github.com/vovakirdan/tilefall/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start tilefall with a mode picker menu",
	Long: `Start tilefall in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select.
Leaving a board with Esc returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - Jump to history
  Q            - Quit

Examples:
  tilefall menu
  tilefall menu --difficulty hard
  tilefall menu --db ./journal.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	store := openStore()
	cfg := runtimeConfig()
	player := playerName()

	items := tui.MenuItems(false)

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(items, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Update config with any size changes
		cfg = menuResult.Config

		if menuResult.Quit || menuResult.Item == nil {
			break
		}

		var game registry.Game
		switch item := menuResult.Item; item.Kind {
		case tui.ItemHistory:
			if store == nil {
				fmt.Fprintln(os.Stderr, "Error: history needs the game journal")
				continue
			}
			goBack, hErr := tui.RunHistory(store, cfg.ScreenW, cfg.ScreenH)
			if hErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", hErr)
			}
			if goBack {
				continue
			}
			closeStore(store)
			return

		case tui.ItemLayouts:
			id, quit, lErr := tui.RunLayoutSelector(cfg)
			if lErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", lErr)
				continue
			}
			if quit {
				closeStore(store)
				return
			}
			if id == "" {
				continue
			}
			game = tilefall.NewLayoutWith(id)

		default:
			g, cErr := registry.Create(item.GameID)
			if cErr != nil {
				fmt.Fprintf(os.Stderr, "Error creating game: %v\n", cErr)
				continue
			}
			game = g
		}

		backToMenu, err := tui.Run(game, store, cfg, player)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		if !backToMenu {
			break
		}

		// Fresh board on the next pick unless a seed was pinned
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
	}

	closeStore(store)
}

func closeStore(store *storage.Store) {
	if store != nil {
		store.Close()
	}
}
