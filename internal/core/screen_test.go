package core

import (
	"strings"
	"testing"
)

func TestNewScreenIsBlank(t *testing.T) {
	s := NewScreen(12, 4)

	if s.Width() != 12 || s.Height() != 4 {
		t.Fatalf("expected 12x4, got %dx%d", s.Width(), s.Height())
	}
	want := strings.Repeat(strings.Repeat(" ", 12)+"\n", 3) + strings.Repeat(" ", 12)
	if s.String() != want {
		t.Errorf("expected blank screen, got %q", s.String())
	}
}

func TestScreenBoundsAreSilent(t *testing.T) {
	s := NewScreen(4, 2)

	for _, p := range [][2]int{{-1, 0}, {4, 0}, {0, -1}, {0, 2}} {
		s.SetWithColor(p[0], p[1], '█', ColorRed)
		if c := s.GetCell(p[0], p[1]); c != blank {
			t.Errorf("GetCell(%d, %d) = %+v, expected blank", p[0], p[1], c)
		}
	}
	if s.String() != "    \n    " {
		t.Errorf("out-of-bounds writes changed the screen: %q", s.String())
	}
	if s.Row(-1) != "    " || s.Row(2) != "    " {
		t.Error("out-of-bounds rows should be blank")
	}
}

func TestScreenColouredTiles(t *testing.T) {
	s := NewScreen(8, 2)

	// Two tiles, two columns each, the way the board draws them.
	s.DrawTextWithColor(0, 1, "██", ColorRed)
	s.DrawTextWithColor(2, 1, "██", ColorBlue)
	s.SetWithColor(4, 1, '·', ColorGray)

	tests := []struct {
		x    int
		rune rune
		col  Color
	}{
		{0, '█', ColorRed},
		{1, '█', ColorRed},
		{2, '█', ColorBlue},
		{3, '█', ColorBlue},
		{4, '·', ColorGray},
		{5, ' ', ColorDefault},
	}
	for _, tt := range tests {
		c := s.GetCell(tt.x, 1)
		if c.Rune != tt.rune || c.Color != tt.col {
			t.Errorf("cell %d = %+v, expected %q in colour %d", tt.x, c, tt.rune, tt.col)
		}
	}

	// Plain Set drops the colour.
	s.Set(0, 1, 'x')
	if c := s.GetCell(0, 1); c.Color != ColorDefault {
		t.Errorf("Set should reset colour, got %d", c.Color)
	}

	s.Clear()
	if c := s.GetCell(2, 1); c != blank {
		t.Errorf("Clear should blank every cell, got %+v", c)
	}
}

func TestScreenFillAndRect(t *testing.T) {
	s := NewScreen(6, 4)
	s.Fill('#')
	s.DrawRect(NewRect(1, 1, 3, 2), ' ')

	want := []string{"######", "#   ##", "#   ##", "######"}
	for y, row := range want {
		if got := s.Row(y); got != row {
			t.Errorf("row %d = %q, expected %q", y, got, row)
		}
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(6, 4)
	s.DrawBox(NewRect(0, 0, 6, 4))

	want := []string{
		"┌────┐",
		"│    │",
		"│    │",
		"└────┘",
	}
	for y, row := range want {
		if got := s.Row(y); got != row {
			t.Errorf("row %d = %q, expected %q", y, got, row)
		}
	}
}

func TestScreenText(t *testing.T) {
	tests := []struct {
		name string
		draw func(s *Screen)
		want string
	}{
		{"at offset", func(s *Screen) { s.DrawText(2, 0, "Moves") }, "  Moves   "},
		{"clipped", func(s *Screen) { s.DrawText(7, 0, "Tiles") }, "       Til"},
		{"centered", func(s *Screen) { s.DrawTextCentered(0, "Hi") }, "    Hi    "},
		{"centered odd", func(s *Screen) { s.DrawTextCenteredWithColor(0, "abc", ColorCyan) }, "   abc    "},
		{"multibyte", func(s *Screen) { s.DrawText(0, 0, "·a") }, "·a        "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScreen(10, 1)
			tt.draw(s)
			if got := s.Row(0); got != tt.want {
				t.Errorf("row = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestScreenResizeKeepsTopLeft(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawTextWithColor(0, 0, "Hello", ColorGreen)
	s.DrawText(0, 5, "World")

	s.Resize(8, 4)
	if s.Width() != 8 || s.Height() != 4 {
		t.Fatalf("expected 8x4, got %dx%d", s.Width(), s.Height())
	}
	if !strings.HasPrefix(s.Row(0), "Hello") {
		t.Errorf("expected content kept, row 0 = %q", s.Row(0))
	}
	if s.GetCell(0, 0).Color != ColorGreen {
		t.Error("expected colours kept across resize")
	}

	s.Resize(15, 8)
	if !strings.HasPrefix(s.Row(0), "Hello") {
		t.Errorf("expected content kept after enlarging, row 0 = %q", s.Row(0))
	}
	if s.Row(5) != strings.Repeat(" ", 15) {
		t.Errorf("rows cut by the shrink should come back blank, got %q", s.Row(5))
	}
}

func TestColorBright(t *testing.T) {
	tests := []struct {
		in, want Color
	}{
		{ColorRed, ColorBrightRed},
		{ColorYellow, ColorBrightYellow},
		{ColorBlue, ColorBrightBlue},
		{ColorCyan, ColorBrightCyan},
		{ColorWhite, ColorBrightWhite},
		{ColorGray, ColorBrightWhite},
		{ColorDefault, ColorBrightWhite},
		{ColorBrightGreen, ColorBrightWhite},
	}
	for _, tt := range tests {
		if got := tt.in.Bright(); got != tt.want {
			t.Errorf("%d.Bright() = %d, expected %d", tt.in, got, tt.want)
		}
	}
}
