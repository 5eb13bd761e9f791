// Package core contains the tilefall puzzle rules: the colour grid and the
// selection resolver that removes a same-coloured component and lets the
// remaining tiles settle. It has no dependencies on rendering or input.
package core

// DefaultWidth and DefaultHeight are the board dimensions used when none are given.
const (
	DefaultWidth  = 10
	DefaultHeight = 10
)

// Cell is a single grid position. Its coordinates are fixed at construction;
// only the colour changes.
type Cell struct {
	x, y   int
	colour Colour
}

// X returns the cell's column.
func (c Cell) X() int { return c.x }

// Y returns the cell's row (0 is the bottom).
func (c Cell) Y() int { return c.y }

// Colour returns the cell's current colour.
func (c Cell) Colour() Colour { return c.colour }

// Coord returns the cell's position.
func (c Cell) Coord() Coord { return C(c.x, c.y) }

// Surface is the grid capability the resolver works against.
type Surface interface {
	Width() int
	Height() int
	InBounds(x, y int) bool
	ColourAt(x, y int) (Colour, error)
	SetColourAt(x, y int, c Colour) error
}

// Grid is a fixed-size board of cells indexed cells[x][y].
// A Grid is owned by one game session; callers serialize access.
type Grid struct {
	width  int
	height int
	cells  [][]Cell
}

var _ Surface = (*Grid)(nil)

// NewGrid creates a width x height grid and colours every cell with p.
// A nil painter leaves every cell empty.
func NewGrid(width, height int, p Painter) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([][]Cell, width),
	}
	for x := range width {
		column := make([]Cell, height)
		for y := range height {
			column[y] = Cell{x: x, y: y}
			if p != nil {
				column[y].colour = p.Paint(x, y)
			}
		}
		g.cells[x] = column
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

func (g *Grid) outOfBounds(x, y int) error {
	return &OutOfBoundsError{X: x, Y: y, Width: g.width, Height: g.height}
}

// ColourAt returns the colour at (x, y).
func (g *Grid) ColourAt(x, y int) (Colour, error) {
	if !g.InBounds(x, y) {
		return Empty, g.outOfBounds(x, y)
	}
	return g.cells[x][y].colour, nil
}

// SetColourAt overwrites the colour at (x, y).
func (g *Grid) SetColourAt(x, y int, c Colour) error {
	if !g.InBounds(x, y) {
		return g.outOfBounds(x, y)
	}
	g.cells[x][y].colour = c
	return nil
}

// Cell returns a copy of the cell at (x, y).
func (g *Grid) Cell(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return Cell{}, g.outOfBounds(x, y)
	}
	return g.cells[x][y], nil
}

// Column returns a copy of column x, bottom cell first.
func (g *Grid) Column(x int) ([]Cell, error) {
	if x < 0 || x >= g.width {
		return nil, g.outOfBounds(x, 0)
	}
	column := make([]Cell, g.height)
	copy(column, g.cells[x])
	return column, nil
}

// Remaining returns the number of non-empty cells.
func (g *Grid) Remaining() int {
	count := 0
	for _, column := range g.cells {
		for _, cell := range column {
			if !cell.colour.IsEmpty() {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := &Grid{
		width:  g.width,
		height: g.height,
		cells:  make([][]Cell, g.width),
	}
	for x, column := range g.cells {
		clone.cells[x] = make([]Cell, len(column))
		copy(clone.cells[x], column)
	}
	return clone
}

// Equal returns true if two grids have the same dimensions and colours.
func (g *Grid) Equal(other *Grid) bool {
	if g.width != other.width || g.height != other.height {
		return false
	}
	for x := range g.cells {
		for y := range g.cells[x] {
			if g.cells[x][y] != other.cells[x][y] {
				return false
			}
		}
	}
	return true
}
