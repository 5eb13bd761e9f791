package core

import "fmt"

// Coord is a grid position. Y = 0 is the bottom row.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Neighbours returns the four orthogonal neighbours: up, down, left, right.
// Results may lie outside any grid.
func (c Coord) Neighbours() [4]Coord {
	return [4]Coord{
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
		{X: c.X - 1, Y: c.Y},
		{X: c.X + 1, Y: c.Y},
	}
}
