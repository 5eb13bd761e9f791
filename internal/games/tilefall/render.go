package tilefall

import (
	"unicode/utf8"

	platformcore "github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
)

// BoardStyle controls how RenderBoard draws a snapshot.
type BoardStyle struct {
	CellWidth int                 // Terminal columns per tile, at least 1
	Cursor    *core.Coord         // Optional cursor cell
	Highlight map[core.Coord]bool // Cells drawn in the bright variant
}

// BoardRect returns the screen box a snapshot occupies at (x, y), border included.
func BoardRect(x, y int, s core.Snapshot, cellWidth int) platformcore.Rect {
	if cellWidth < 1 {
		cellWidth = 1
	}
	return platformcore.NewRect(x, y, s.Width*cellWidth+2, s.Height+2)
}

// RenderBoard draws a bordered board into box. Row y=0 is drawn last,
// so tiles settle at the bottom of the box.
func RenderBoard(dst *platformcore.Screen, box platformcore.Rect, s core.Snapshot, style BoardStyle) {
	cellW := style.CellWidth
	if cellW < 1 {
		cellW = 1
	}

	dst.DrawBox(box)

	for x := 0; x < s.Width; x++ {
		for y := 0; y < s.Height; y++ {
			sx := box.X + 1 + x*cellW
			sy := box.Y + 1 + (s.Height - 1 - y)
			c := core.C(x, y)
			colour := s.ColourAt(x, y)
			isCursor := style.Cursor != nil && *style.Cursor == c
			drawTile(dst, sx, sy, cellW, colour, style.Highlight[c], isCursor)
		}
	}
}

func drawTile(dst *platformcore.Screen, sx, sy, cellW int, colour core.Colour, bright, cursor bool) {
	if colour.IsEmpty() {
		for i := 0; i < cellW; i++ {
			dst.Set(sx+i, sy, ' ')
		}
		dst.SetWithColor(sx+cellW/2, sy, '·', platformcore.ColorGray)
		if cursor {
			drawCursor(dst, sx, sy, cellW, platformcore.ColorWhite)
		}
		return
	}

	col := ColourToScreen(colour)
	block := '█'
	if bright {
		col = BrightColour(colour)
		block = '▓'
	}
	for i := 0; i < cellW; i++ {
		dst.SetWithColor(sx+i, sy, block, col)
	}
	if cursor {
		drawCursor(dst, sx, sy, cellW, col)
	}
}

func drawCursor(dst *platformcore.Screen, sx, sy, cellW int, col platformcore.Color) {
	if cellW == 1 {
		dst.SetWithColor(sx, sy, '◆', col)
		return
	}
	dst.SetWithColor(sx, sy, '[', col)
	dst.SetWithColor(sx+cellW-1, sy, ']', col)
}

// CellAt translates a screen position inside box to grid coordinates.
// The border and anything outside the box are not cells.
func CellAt(box platformcore.Rect, cellWidth, height, sx, sy int) (core.Coord, bool) {
	if cellWidth < 1 {
		cellWidth = 1
	}
	inner := platformcore.NewRect(box.X+1, box.Y+1, box.W-2, box.H-2)
	if !inner.Contains(sx, sy) {
		return core.Coord{}, false
	}
	x := (sx - inner.X) / cellWidth
	y := height - 1 - (sy - inner.Y)
	if y < 0 || y >= height {
		return core.Coord{}, false
	}
	return core.C(x, y), true
}

// ColourToScreen maps a tile colour to a terminal colour.
func ColourToScreen(c core.Colour) platformcore.Color {
	switch c {
	case core.Red:
		return platformcore.ColorRed
	case core.Green:
		return platformcore.ColorGreen
	case core.Blue:
		return platformcore.ColorBlue
	case core.Yellow:
		return platformcore.ColorYellow
	case core.Purple:
		return platformcore.ColorMagenta
	case core.Cyan:
		return platformcore.ColorCyan
	default:
		return platformcore.ColorGray
	}
}

// BrightColour is the highlighted variant of ColourToScreen.
func BrightColour(c core.Colour) platformcore.Color {
	return ColourToScreen(c).Bright()
}

// renderOverlay draws a centered box with two lines of text.
func renderOverlay(dst *platformcore.Screen, line1, line2 string) {
	maxLen := utf8.RuneCountInString(line1)
	if n := utf8.RuneCountInString(line2); n > maxLen {
		maxLen = n
	}
	box := platformcore.NewRect((dst.Width()-maxLen-4)/2, (dst.Height()-5)/2, maxLen+4, 5)

	dst.DrawRect(box, ' ')
	dst.DrawBox(box)
	dst.DrawTextCenteredWithColor(box.Y+1, line1, platformcore.ColorBrightWhite)
	dst.DrawTextCenteredWithColor(box.Y+3, line2, platformcore.ColorGray)
}
