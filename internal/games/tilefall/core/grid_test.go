package core

import (
	"errors"
	"testing"
)

func TestNewGridDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"default", DefaultWidth, DefaultHeight},
		{"three by five", 3, 5},
		{"single cell", 1, 1},
		{"wide", 12, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGrid(tc.w, tc.h, Fill(Red))
			if err != nil {
				t.Fatalf("NewGrid(%d, %d) failed: %v", tc.w, tc.h, err)
			}
			if g.Width() != tc.w || g.Height() != tc.h {
				t.Errorf("expected %dx%d grid, got %dx%d", tc.w, tc.h, g.Width(), g.Height())
			}
			if len(g.cells) != tc.w {
				t.Errorf("expected %d columns, got %d", tc.w, len(g.cells))
			}
			for x := range tc.w {
				if len(g.cells[x]) != tc.h {
					t.Errorf("column %d: expected %d cells, got %d", x, tc.h, len(g.cells[x]))
				}
				for y := range tc.h {
					cell := g.cells[x][y]
					if cell.X() != x || cell.Y() != y {
						t.Errorf("cell at [%d][%d] reports coordinates (%d,%d)", x, y, cell.X(), cell.Y())
					}
				}
			}
		})
	}
}

func TestNewGridThreeByFive(t *testing.T) {
	g, err := NewGrid(3, 5, nil)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if len(g.cells) != 3 {
		t.Errorf("expected grid length 3, got %d", len(g.cells))
	}
	for x := range 3 {
		column, err := g.Column(x)
		if err != nil {
			t.Fatalf("Column(%d) failed: %v", x, err)
		}
		if len(column) != 5 {
			t.Errorf("column %d: expected length 5, got %d", x, len(column))
		}
	}
}

func TestNewGridInvalidSize(t *testing.T) {
	sizes := [][2]int{{0, 10}, {10, 0}, {-1, 5}, {5, -3}}
	for _, s := range sizes {
		if _, err := NewGrid(s[0], s[1], nil); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewGrid(%d, %d): expected ErrInvalidSize, got %v", s[0], s[1], err)
		}
	}
}

func TestGridInBounds(t *testing.T) {
	g, _ := NewGrid(5, 4, nil)

	testCases := []struct {
		x, y     int
		expected bool
	}{
		{0, 0, true},
		{4, 3, true},
		{2, 2, true},
		{-1, 0, false},
		{0, -1, false},
		{5, 0, false},
		{0, 4, false},
		{5, 4, false},
	}

	for _, tc := range testCases {
		if got := g.InBounds(tc.x, tc.y); got != tc.expected {
			t.Errorf("InBounds(%d, %d): expected %v, got %v", tc.x, tc.y, tc.expected, got)
		}
	}
}

func TestGridColourAccess(t *testing.T) {
	g, _ := NewGrid(3, 3, Fill(Blue))

	if err := g.SetColourAt(1, 2, Yellow); err != nil {
		t.Fatalf("SetColourAt failed: %v", err)
	}
	c, err := g.ColourAt(1, 2)
	if err != nil {
		t.Fatalf("ColourAt failed: %v", err)
	}
	if c != Yellow {
		t.Errorf("expected yellow at (1,2), got %v", c)
	}

	c, _ = g.ColourAt(0, 0)
	if c != Blue {
		t.Errorf("expected blue at (0,0), got %v", c)
	}
}

func TestGridOutOfBounds(t *testing.T) {
	g, _ := NewGrid(3, 3, Fill(Blue))

	_, err := g.ColourAt(3, 0)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("ColourAt(3, 0): expected ErrOutOfBounds, got %v", err)
	}
	var oob *OutOfBoundsError
	if !errors.As(err, &oob) {
		t.Fatalf("expected *OutOfBoundsError, got %T", err)
	}
	if oob.X != 3 || oob.Y != 0 || oob.Width != 3 || oob.Height != 3 {
		t.Errorf("unexpected error fields: %+v", oob)
	}

	if err := g.SetColourAt(0, -1, Red); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetColourAt(0, -1): expected ErrOutOfBounds, got %v", err)
	}
	if _, err := g.Cell(-1, -1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Cell(-1, -1): expected ErrOutOfBounds, got %v", err)
	}
	if _, err := g.Column(7); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Column(7): expected ErrOutOfBounds, got %v", err)
	}
}

func TestGridCloneIsIndependent(t *testing.T) {
	g, _ := NewGrid(4, 4, SeededPainter(7, 3))
	clone := g.Clone()

	if !g.Equal(clone) {
		t.Fatal("clone should equal original")
	}

	_ = clone.SetColourAt(0, 0, Empty)
	if g.Equal(clone) {
		t.Error("modifying clone should not affect original")
	}
}

func TestGridRemaining(t *testing.T) {
	g, _ := NewGrid(4, 3, Fill(Green))
	if g.Remaining() != 12 {
		t.Errorf("expected 12 remaining, got %d", g.Remaining())
	}
	_ = g.SetColourAt(1, 1, Empty)
	_ = g.SetColourAt(2, 2, Empty)
	if g.Remaining() != 10 {
		t.Errorf("expected 10 remaining, got %d", g.Remaining())
	}
}

func TestSeededPainterDeterministic(t *testing.T) {
	a, _ := NewGrid(10, 10, SeededPainter(42, 4))
	b, _ := NewGrid(10, 10, SeededPainter(42, 4))
	c, _ := NewGrid(10, 10, SeededPainter(43, 4))

	if !a.Equal(b) {
		t.Error("same seed should produce the same grid")
	}
	if a.Equal(c) {
		t.Error("different seeds should produce different grids")
	}

	allowed := map[Colour]bool{Red: true, Green: true, Blue: true, Yellow: true}
	for x := range 10 {
		for y := range 10 {
			col, _ := a.ColourAt(x, y)
			if !allowed[col] {
				t.Fatalf("colour %v at (%d,%d) is outside the 4-colour palette", col, x, y)
			}
		}
	}
}

func TestPalette(t *testing.T) {
	tests := []struct {
		n        int
		expected int
	}{
		{-1, 0},
		{0, 0},
		{3, 3},
		{MaxColours, MaxColours},
		{MaxColours + 4, MaxColours},
	}
	for _, tc := range tests {
		p := Palette(tc.n)
		if len(p) != tc.expected {
			t.Errorf("Palette(%d): expected %d colours, got %d", tc.n, tc.expected, len(p))
		}
		for _, c := range p {
			if c.IsEmpty() {
				t.Errorf("Palette(%d) contains the empty marker", tc.n)
			}
		}
	}
}

func TestParseColour(t *testing.T) {
	tests := []struct {
		in       string
		expected Colour
		ok       bool
	}{
		{"red", Red, true},
		{"R", Red, true},
		{"Cyan", Cyan, true},
		{".", Empty, true},
		{"magenta", Empty, false},
	}
	for _, tc := range tests {
		c, ok := ParseColour(tc.in)
		if c != tc.expected || ok != tc.ok {
			t.Errorf("ParseColour(%q) = (%v, %v), expected (%v, %v)", tc.in, c, ok, tc.expected, tc.ok)
		}
	}
}
