// Package replay rebuilds journaled games move by move.
package replay

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/layouts"
	"github.com/vovakirdan/tilefall/internal/storage"
)

// ErrDiverged is matched by every DivergedError.
var ErrDiverged = errors.New("replay diverged")

// DivergedError reports a journaled move that no longer removes what it did.
type DivergedError struct {
	Seq      int
	Expected int
	Got      int
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("replay diverged at move %d: journal removed %d, replay removed %d",
		e.Seq, e.Expected, e.Got)
}

// Is makes errors.Is(err, ErrDiverged) succeed.
func (e *DivergedError) Is(target error) bool {
	return target == ErrDiverged
}

// Step is one re-applied move and the board after it.
type Step struct {
	Move    storage.MoveRecord
	Removed []core.Coord
	Board   core.Snapshot
}

// Result is a finished replay.
type Result struct {
	Initial core.Snapshot
	Final   core.Snapshot
	Steps   []Step
}

// InitialGrid deals the starting board of a journaled game.
func InitialGrid(rec storage.GameRecord) (*core.Grid, error) {
	if rec.LayoutID != "" {
		l, err := layouts.Find(rec.LayoutID)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		grid, err := l.NewGrid()
		if err != nil {
			return nil, fmt.Errorf("replay: layout %s: %w", rec.LayoutID, err)
		}
		return grid, nil
	}
	if len(rec.Palette) == 0 {
		return nil, fmt.Errorf("replay: game %d has no palette", rec.ID)
	}
	grid, err := tilefall.DealGrid(rec.Width, rec.Height, rec.Seed, rec.Palette)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return grid, nil
}

// Run re-applies moves in order to the starting board of rec.
// It stops at the first move whose removed count disagrees with the journal.
func Run(rec storage.GameRecord, moves []storage.MoveRecord) (Result, error) {
	grid, err := InitialGrid(rec)
	if err != nil {
		return Result{}, err
	}
	if rec.Tiles > 0 && grid.Remaining() != rec.Tiles {
		return Result{}, &DivergedError{Seq: 0, Expected: rec.Tiles, Got: grid.Remaining()}
	}

	res := Result{Initial: grid.Snapshot()}
	for _, m := range moves {
		removed, err := core.ResolveSelection(grid, m.X, m.Y)
		if err != nil {
			return res, fmt.Errorf("replay: move %d: %w", m.Seq, err)
		}
		if len(removed) != m.Removed {
			return res, &DivergedError{Seq: m.Seq, Expected: m.Removed, Got: len(removed)}
		}
		res.Steps = append(res.Steps, Step{Move: m, Removed: removed, Board: grid.Snapshot()})
	}
	res.Final = grid.Snapshot()
	return res, nil
}

// Load reads a game and its moves from the journal and replays it.
func Load(store *storage.Store, id int64) (storage.GameRecord, Result, error) {
	rec, err := store.Game(id)
	if err != nil {
		return storage.GameRecord{}, Result{}, err
	}
	moves, err := store.Moves(id)
	if err != nil {
		return rec, Result{}, err
	}
	res, err := Run(rec, moves)
	return rec, res, err
}
