package core

import "math/rand"

// Painter assigns the initial colour of each cell of a new grid.
type Painter interface {
	Paint(x, y int) Colour
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(x, y int) Colour

// Paint calls f(x, y).
func (f PainterFunc) Paint(x, y int) Colour {
	return f(x, y)
}

// Fill paints every cell with c.
func Fill(c Colour) Painter {
	return PainterFunc(func(int, int) Colour { return c })
}

// RandomPainter picks a colour from palette for every cell.
// NewGrid visits cells column by column, bottom to top, so a given rng seed
// always produces the same board for the same dimensions.
func RandomPainter(rng *rand.Rand, palette []Colour) Painter {
	if len(palette) == 0 {
		return Fill(Empty)
	}
	return PainterFunc(func(int, int) Colour {
		return palette[rng.Intn(len(palette))]
	})
}

// SeededPainter is RandomPainter over the first colours of the palette,
// driven by a fresh source for seed.
func SeededPainter(seed int64, colours int) Painter {
	return RandomPainter(rand.New(rand.NewSource(seed)), Palette(colours))
}

// SnapshotPainter reproduces the colours captured in s.
// Cells outside the snapshot are painted empty.
func SnapshotPainter(s Snapshot) Painter {
	return PainterFunc(func(x, y int) Colour {
		if x < 0 || x >= len(s.Columns) || y < 0 || y >= len(s.Columns[x]) {
			return Empty
		}
		return s.Columns[x][y]
	})
}
