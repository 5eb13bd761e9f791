package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic boards.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second (default 30)
	Seed     int64 // RNG seed for deterministic boards
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Moves     int  // Selections that removed at least one tile
	Remaining int  // Non-empty cells left on the board
	Paused    bool // Whether the game is paused
}

// Cleared reports whether the board has no tiles left.
func (s GameState) Cleared() bool {
	return s.Remaining == 0
}

// Move describes one selection that changed the board.
type Move struct {
	X, Y    int // Grid coordinates of the selected cell
	Removed int // Number of tiles removed
}

// StepResult is returned by Game.Step() after each frame.
// Move is nil unless the frame removed tiles.
type StepResult struct {
	State GameState
	Move  *Move
	Dealt bool // A fresh board replaced the old one this frame
}
