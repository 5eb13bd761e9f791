package core

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

// gridFromRows builds a grid from ASCII rows, top row first.
func gridFromRows(t *testing.T, rows ...string) *Grid {
	t.Helper()
	snap, err := ParseASCII(rows...)
	if err != nil {
		t.Fatalf("ParseASCII failed: %v", err)
	}
	g, err := snap.Grid()
	if err != nil {
		t.Fatalf("Grid() failed: %v", err)
	}
	return g
}

func sortCoords(coords []Coord) []Coord {
	out := append([]Coord(nil), coords...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

func TestResolveSelectionScenario(t *testing.T) {
	g, _ := NewGrid(10, 10, Fill(Yellow))
	for y := 0; y < 5; y++ {
		_ = g.SetColourAt(0, y, Red)
		_ = g.SetColourAt(1, y, Blue)
	}
	for y := 5; y < 10; y++ {
		_ = g.SetColourAt(0, y, Green)
	}
	before := g.Clone()

	removed, err := ResolveSelection(g, 0, 0)
	if err != nil {
		t.Fatalf("ResolveSelection failed: %v", err)
	}

	expected := []Coord{C(0, 0), C(0, 1), C(0, 2), C(0, 3), C(0, 4)}
	if got := sortCoords(removed); !reflect.DeepEqual(got, expected) {
		t.Errorf("removed = %v, expected %v", got, expected)
	}

	for y := 0; y < 5; y++ {
		if c, _ := g.ColourAt(0, y); c != Green {
			t.Errorf("(0,%d): expected green after settling, got %v", y, c)
		}
		if c, _ := g.ColourAt(1, y); c != Blue {
			t.Errorf("(1,%d): expected blue untouched, got %v", y, c)
		}
	}
	for y := 5; y < 10; y++ {
		if c, _ := g.ColourAt(0, y); c != Empty {
			t.Errorf("(0,%d): expected empty, got %v", y, c)
		}
	}
	for x := 1; x < 10; x++ {
		for y := range 10 {
			was, _ := before.ColourAt(x, y)
			now, _ := g.ColourAt(x, y)
			if was != now {
				t.Errorf("(%d,%d) changed from %v to %v", x, y, was, now)
			}
		}
	}
}

func TestResolveSelectionEmptyCellIsNoOp(t *testing.T) {
	g := gridFromRows(t,
		"R..",
		"RB.",
		"RBG",
	)
	before := g.Snapshot()

	removed, err := ResolveSelection(g, 2, 2)
	if err != nil {
		t.Fatalf("ResolveSelection on empty cell returned error: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("expected no removed cells, got %v", removed)
	}
	if !reflect.DeepEqual(before, g.Snapshot()) {
		t.Error("grid changed after selecting an empty cell")
	}
}

func TestResolveSelectionSecondCallIsNoOp(t *testing.T) {
	g := gridFromRows(t,
		"RB",
		"RB",
		"RB",
	)

	first, err := ResolveSelection(g, 0, 0)
	if err != nil {
		t.Fatalf("first ResolveSelection failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 removed cells, got %d", len(first))
	}

	second, err := ResolveSelection(g, 0, 0)
	if err != nil {
		t.Fatalf("second ResolveSelection failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second call should remove nothing, got %v", second)
	}
}

func TestResolveSelectionIsolatedCell(t *testing.T) {
	g := gridFromRows(t,
		"BGB",
		"GYG",
		"BRB",
		"GBG",
	)

	removed, err := ResolveSelection(g, 1, 1)
	if err != nil {
		t.Fatalf("ResolveSelection failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != C(1, 1) {
		t.Fatalf("expected only (1,1) removed, got %v", removed)
	}

	expected := gridFromRows(t,
		"B.B",
		"GGG",
		"BYB",
		"GBG",
	)
	if !g.Equal(expected) {
		t.Errorf("unexpected board after single-cell removal:\n%s\nexpected:\n%s",
			RenderASCII(g.Snapshot()), RenderASCII(expected.Snapshot()))
	}
}

func TestResolveSelectionCases(t *testing.T) {
	tests := []struct {
		name     string
		rows     []string
		x, y     int
		removed  int
		expected []string
	}{
		{
			name:     "no diagonals",
			rows:     []string{"R.", ".R"},
			x:        1,
			y:        0,
			removed:  1,
			expected: []string{"R.", ".."},
		},
		{
			name:     "full column cleared stays empty",
			rows:     []string{"RG", "RG", "RG"},
			x:        0,
			y:        1,
			removed:  3,
			expected: []string{".G", ".G", ".G"},
		},
		{
			name:     "component spans columns",
			rows:     []string{"GBY", "RRR", "YBG"},
			x:        2,
			y:        1,
			removed:  3,
			expected: []string{"...", "GBY", "YBG"},
		},
		{
			name:     "survivors keep order across gaps",
			rows:     []string{"Y", "R", "B", "R", "G"},
			x:        0,
			y:        1,
			removed:  1,
			expected: []string{".", "Y", "R", "B", "G"},
		},
		{
			name:     "u-shape",
			rows:     []string{"R.R", "RBR", "RRR"},
			x:        0,
			y:        0,
			removed:  7,
			expected: []string{"...", "...", ".B."},
		},
		{
			name:     "empties already present above",
			rows:     []string{"..", "B.", "RR", "GB"},
			x:        1,
			y:        1,
			removed:  2,
			expected: []string{"..", "..", "B.", "GB"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := gridFromRows(t, tc.rows...)
			removed, err := ResolveSelection(g, tc.x, tc.y)
			if err != nil {
				t.Fatalf("ResolveSelection failed: %v", err)
			}
			if len(removed) != tc.removed {
				t.Errorf("expected %d removed, got %d (%v)", tc.removed, len(removed), removed)
			}
			want := gridFromRows(t, tc.expected...)
			if !g.Equal(want) {
				t.Errorf("board mismatch:\n%s\nexpected:\n%s",
					RenderASCII(g.Snapshot()), RenderASCII(want.Snapshot()))
			}
		})
	}
}

func TestResolveSelectionOutOfBounds(t *testing.T) {
	g, _ := NewGrid(3, 3, Fill(Red))
	before := g.Snapshot()

	removed, err := ResolveSelection(g, 3, 1)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if removed != nil {
		t.Errorf("expected nil removed list, got %v", removed)
	}
	if !reflect.DeepEqual(before, g.Snapshot()) {
		t.Error("grid changed after out-of-bounds selection")
	}
}

func TestFindComponentDoesNotMutate(t *testing.T) {
	g := gridFromRows(t,
		"RRB",
		"GRB",
		"GGB",
	)
	before := g.Snapshot()

	component, err := FindComponent(g, 1, 1)
	if err != nil {
		t.Fatalf("FindComponent failed: %v", err)
	}
	expected := []Coord{C(0, 2), C(1, 1), C(1, 2)}
	if got := sortCoords(component); !reflect.DeepEqual(got, expected) {
		t.Errorf("component = %v, expected %v", got, expected)
	}
	if !reflect.DeepEqual(before, g.Snapshot()) {
		t.Error("FindComponent modified the grid")
	}
}

func TestCompactIgnoresUnknownColumns(t *testing.T) {
	g := gridFromRows(t,
		"R.",
		".B",
	)
	Compact(g, -1, 5)
	want := gridFromRows(t, "R.", ".B")
	if !g.Equal(want) {
		t.Error("Compact on out-of-range columns should not change the grid")
	}

	Compact(g, 0)
	want = gridFromRows(t, "..", "RB")
	if !g.Equal(want) {
		t.Errorf("Compact(0) mismatch:\n%s", RenderASCII(g.Snapshot()))
	}
}

// componentOf is a recursive model of the same-colour region around (x, y),
// read only through ColourAt.
func componentOf(g *Grid, x, y int) []Coord {
	seed, err := g.ColourAt(x, y)
	if err != nil || seed.IsEmpty() {
		return nil
	}
	seen := make(map[Coord]bool)
	var visit func(x, y int)
	visit = func(x, y int) {
		c := C(x, y)
		if seen[c] {
			return
		}
		if col, err := g.ColourAt(x, y); err != nil || col != seed {
			return
		}
		seen[c] = true
		visit(x+1, y)
		visit(x-1, y)
		visit(x, y+1)
		visit(x, y-1)
	}
	visit(x, y)

	out := make([]Coord, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	return out
}

func TestComponentOfModel(t *testing.T) {
	g := gridFromRows(t,
		"RRG",
		"GRG",
		"RRB",
	)
	want := []Coord{C(0, 0), C(0, 2), C(1, 0), C(1, 1), C(1, 2)}
	if got := sortCoords(componentOf(g, 1, 1)); !reflect.DeepEqual(got, want) {
		t.Errorf("componentOf(1, 1) = %v, expected %v", got, want)
	}
	if got := componentOf(g, 3, 0); got != nil {
		t.Errorf("out of bounds should give nothing, got %v", got)
	}
}

// TestResolveSelectionProperties checks random boards against componentOf:
// the removed set is exactly the component, untouched columns are unchanged,
// and affected columns equal their survivors followed by empties.
func TestResolveSelectionProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := range 200 {
		w := 1 + rng.Intn(8)
		h := 1 + rng.Intn(8)
		g, _ := NewGrid(w, h, SeededPainter(int64(i), 1+rng.Intn(4)))
		// Knock out a few cells so empties appear mid-column before selecting.
		for range rng.Intn(4) {
			_ = g.SetColourAt(rng.Intn(w), rng.Intn(h), Empty)
		}
		before := g.Clone()
		x, y := rng.Intn(w), rng.Intn(h)
		seed, _ := before.ColourAt(x, y)

		component := sortCoords(componentOf(before, x, y))
		if found, _ := FindComponent(before, x, y); !reflect.DeepEqual(sortCoords(found), component) {
			t.Fatalf("case %d: FindComponent %v, expected %v", i, found, component)
		}
		removed, err := ResolveSelection(g, x, y)
		if err != nil {
			t.Fatalf("case %d: ResolveSelection failed: %v", i, err)
		}
		if !reflect.DeepEqual(component, sortCoords(removed)) {
			t.Fatalf("case %d: removed %v, component %v", i, removed, component)
		}

		gone := make(map[Coord]bool, len(removed))
		for _, c := range removed {
			if col, _ := before.ColourAt(c.X, c.Y); col != seed {
				t.Fatalf("case %d: removed %v had colour %v, seed colour %v", i, c, col, seed)
			}
			if gone[c] {
				t.Fatalf("case %d: %v reported twice", i, c)
			}
			gone[c] = true
		}

		for cx := range w {
			var survivors []Colour
			for cy := range h {
				col, _ := before.ColourAt(cx, cy)
				if !gone[C(cx, cy)] && !col.IsEmpty() {
					survivors = append(survivors, col)
				}
			}
			touched := false
			for _, c := range removed {
				if c.X == cx {
					touched = true
				}
			}

			for cy := range h {
				got, _ := g.ColourAt(cx, cy)
				if !touched {
					was, _ := before.ColourAt(cx, cy)
					if got != was {
						t.Fatalf("case %d: untouched column %d changed at y=%d", i, cx, cy)
					}
					continue
				}
				want := Empty
				if cy < len(survivors) {
					want = survivors[cy]
				}
				if got != want {
					t.Fatalf("case %d: column %d y=%d: got %v, expected %v", i, cx, cy, got, want)
				}
			}
		}
	}
}
