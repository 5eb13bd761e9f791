package core

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is matched by every OutOfBoundsError.
	ErrOutOfBounds = errors.New("tilefall: coordinate out of bounds")

	// ErrInvalidSize is returned when a grid dimension is not positive.
	ErrInvalidSize = errors.New("tilefall: grid dimensions must be positive")
)

// OutOfBoundsError reports direct cell access outside the grid.
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("tilefall: coordinate (%d,%d) outside %dx%d grid", e.X, e.Y, e.Width, e.Height)
}

// Is makes errors.Is(err, ErrOutOfBounds) succeed.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// RowError describes a malformed row in an ASCII board description.
type RowError struct {
	Row    int // 0-based, top row first
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("tilefall: row %d: %s", e.Row, e.Reason)
}
