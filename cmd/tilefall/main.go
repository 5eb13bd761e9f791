// tilefall is a colour-matching tile puzzle for the terminal.
//
// Usage:
//
//	tilefall list              - List game modes and layouts
//	tilefall play [mode]       - Play a board
//	tilefall menu              - Pick a mode interactively
//	tilefall serve             - Start the SSH server with shared tables
//	tilefall history           - Show journaled games
//	tilefall replay <id>       - Replay a journaled game
//
// Global flags:
//
//	--fps <rate>           - Set tick rate (default: 30)
//	--seed <value>         - Set RNG seed for reproducible boards
//	--db <path>            - Set journal path (default: ~/.tilefall/journal.db)
//	--config <path>        - Custom tilefall.yaml
//	--difficulty <preset>  - easy, normal, hard or fixed
//	--width, --height      - Override the board size
//	--theme <name>         - Colour theme
package main

import (
	"fmt"
	"os"
	"os/user"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilefall/internal/config"
	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/platform/tui"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagWidth      int
	flagHeight     int
	flagTheme      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tilefall",
	Short: "Tilefall - clear the board one colour group at a time",
	Long: `Tilefall is a colour-matching puzzle for the terminal.

Select a tile to remove it together with every tile of the same colour
connected to it. Tiles above the gap fall down. Clear the whole board.

Available commands:
  list     - Show game modes and layouts
  play     - Play a board directly
  menu     - Interactive mode picker
  serve    - Start SSH server with shared tables
  history  - List journaled games
  replay   - Replay a journaled game

Examples:
  tilefall play
  tilefall play --difficulty hard --seed 42
  tilefall play tilefall_layout --layout 02-checker
  tilefall serve --ssh :2222 --watch :8080
  tilefall replay 12 --steps`,
	SilenceUsage:      true,
	PersistentPreRunE: applyGlobalFlags,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.tilefall/journal.db", "Path to game journal database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom tilefall config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().IntVar(&flagWidth, "width", 0, "Board width (0 = from config)")
	rootCmd.PersistentFlags().IntVar(&flagHeight, "height", 0, "Board height (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "Colour theme: "+strings.Join(tui.ThemeNames(), ", "))

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(replayCmd)
}

// applyGlobalFlags pushes the global flags into the game and theme packages.
func applyGlobalFlags(_ *cobra.Command, _ []string) error {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return err
	}
	if flagWidth < 0 || flagHeight < 0 {
		return fmt.Errorf("board size must not be negative (got %dx%d)", flagWidth, flagHeight)
	}
	theme, err := tui.ThemeByName(flagTheme)
	if err != nil {
		return err
	}

	tilefall.SetConfigPath(flagConfig)
	tilefall.SetDifficultyPreset(preset)
	tilefall.SetBoardSize(flagWidth, flagHeight)
	tui.SetTheme(theme)
	return nil
}

// playerName labels local games in the journal.
func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "local"
}
