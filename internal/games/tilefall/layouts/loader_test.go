package layouts

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"b.yaml": {Data: []byte(`
id: "b"
name: "Second"
rows:
  - "R."
  - "RG"
`)},
		"nested/a.yml": {Data: []byte(`
id: "a"
rows:
  - "BBB"
`)},
		"broken.yaml": {Data: []byte(`
id: "broken"
rows:
  - "RG"
  - "R"
`)},
		"readme.txt": {Data: []byte("not a layout")},
	}
}

func TestLoaderLoadAll(t *testing.T) {
	loader := NewFSLoader(testFS(), "test")

	all, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(all))
	}
	if all[0].ID != "a" || all[1].ID != "b" {
		t.Errorf("expected sorted IDs [a b], got [%s %s]", all[0].ID, all[1].ID)
	}
	if all[0].Name != "a" {
		t.Errorf("expected name to default to ID, got %q", all[0].Name)
	}
	if all[0].FilePath != "test/nested/a.yml" {
		t.Errorf("unexpected file path %q", all[0].FilePath)
	}
}

func TestLoaderLoadByID(t *testing.T) {
	loader := NewFSLoader(testFS(), "test")

	l, err := loader.LoadByID("b")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if l.Name != "Second" {
		t.Errorf("expected Name 'Second', got %q", l.Name)
	}

	g, err := l.NewGrid()
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if g.Width() != 2 || g.Height() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", g.Width(), g.Height())
	}
	// Bottom row is the last row in the file.
	checks := []struct {
		x, y     int
		expected core.Colour
	}{
		{0, 0, core.Red},
		{1, 0, core.Green},
		{0, 1, core.Red},
		{1, 1, core.Empty},
	}
	for _, c := range checks {
		got, _ := g.ColourAt(c.x, c.y)
		if got != c.expected {
			t.Errorf("ColourAt(%d,%d) = %v, expected %v", c.x, c.y, got, c.expected)
		}
	}

	if _, err := loader.LoadByID("missing"); err == nil {
		t.Error("expected error for missing layout")
	}
}

func TestLoaderLoadFileErrors(t *testing.T) {
	loader := NewFSLoader(testFS(), "test")

	if _, err := loader.LoadFile("broken.yaml"); err == nil {
		t.Error("expected error for ragged rows")
	} else {
		var rowErr *core.RowError
		if !errors.As(err, &rowErr) {
			t.Errorf("expected RowError in chain, got %v", err)
		}
	}
	if _, err := loader.LoadFile("readme.txt"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := loader.LoadFile("nope.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuiltinLayouts(t *testing.T) {
	all, err := Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	expected := []string{"01-stripes", "02-checker", "03-pyramid", "04-rainbow"}
	if len(all) != len(expected) {
		t.Fatalf("expected %d builtin layouts, got %d", len(expected), len(all))
	}
	for i, id := range expected {
		if all[i].ID != id {
			t.Errorf("layout %d: expected %s, got %s", i, id, all[i].ID)
		}
		g, err := all[i].NewGrid()
		if err != nil {
			t.Errorf("layout %s: NewGrid failed: %v", id, err)
			continue
		}
		if g.Remaining() == 0 {
			t.Errorf("layout %s has no tiles", id)
		}
	}
}

// Builtin boards must already be settled: no tile sits above an empty cell.
func TestBuiltinLayoutsAreSettled(t *testing.T) {
	all, err := Builtin().LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	for _, l := range all {
		for x, col := range l.Board.Columns {
			seenEmpty := false
			for y, c := range col {
				if c.IsEmpty() {
					seenEmpty = true
				} else if seenEmpty {
					t.Errorf("layout %s: floating tile at (%d,%d)", l.ID, x, y)
				}
			}
		}
	}
}
