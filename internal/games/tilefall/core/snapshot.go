package core

import "strings"

// Snapshot is a plain copy of a grid's colours, Columns[x][y], used for
// determinism checks, persistence and shipping boards to other sessions.
type Snapshot struct {
	Width   int        `json:"width" yaml:"width"`
	Height  int        `json:"height" yaml:"height"`
	Columns [][]Colour `json:"columns" yaml:"columns"`
}

// Snapshot captures the grid's current colours.
func (g *Grid) Snapshot() Snapshot {
	columns := make([][]Colour, g.width)
	for x, column := range g.cells {
		columns[x] = make([]Colour, len(column))
		for y, cell := range column {
			columns[x][y] = cell.colour
		}
	}
	return Snapshot{Width: g.width, Height: g.height, Columns: columns}
}

// ColourAt returns the colour at (x, y), or Empty outside the snapshot.
func (s Snapshot) ColourAt(x, y int) Colour {
	if x < 0 || x >= len(s.Columns) || y < 0 || y >= len(s.Columns[x]) {
		return Empty
	}
	return s.Columns[x][y]
}

// Remaining returns the number of non-empty cells.
func (s Snapshot) Remaining() int {
	count := 0
	for _, column := range s.Columns {
		for _, c := range column {
			if !c.IsEmpty() {
				count++
			}
		}
	}
	return count
}

// Grid rebuilds a Grid from the snapshot.
func (s Snapshot) Grid() (*Grid, error) {
	return NewGrid(s.Width, s.Height, SnapshotPainter(s))
}

// RenderASCII draws the snapshot one row per line, top row first, using
// Colour.Char for each cell.
func RenderASCII(s Snapshot) string {
	var sb strings.Builder
	sb.Grow((s.Width + 1) * s.Height)

	for y := s.Height - 1; y >= 0; y-- {
		for x := range s.Width {
			sb.WriteRune(s.ColourAt(x, y).Char())
		}
		if y > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseASCII is the inverse of RenderASCII: rows top first, one Colour.Char
// per cell. Used for fixtures.
func ParseASCII(rows ...string) (Snapshot, error) {
	height := len(rows)
	if height == 0 {
		return Snapshot{}, ErrInvalidSize
	}
	width := len(rows[0])
	if width == 0 {
		return Snapshot{}, ErrInvalidSize
	}

	columns := make([][]Colour, width)
	for x := range columns {
		columns[x] = make([]Colour, height)
	}
	for i, row := range rows {
		if len(row) != width {
			return Snapshot{}, &RowError{Row: i, Reason: "row length differs from first row"}
		}
		y := height - 1 - i
		for x, r := range row {
			c, ok := ParseColour(string(r))
			if !ok {
				return Snapshot{}, &RowError{Row: i, Reason: "unknown colour " + string(r)}
			}
			columns[x][y] = c
		}
	}
	return Snapshot{Width: width, Height: height, Columns: columns}, nil
}
