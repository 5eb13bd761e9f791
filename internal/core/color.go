package core

// Color represents a foreground color for a screen cell.
// Themes map each value to a terminal colour.
type Color uint8

// Screen colours. Tiles use the six base hues; the bright variants mark
// the hovered group, ColorGray marks empty cells and chrome.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorGray
)

// Bright returns the highlighted variant of a base colour.
// Colours without one brighten to ColorBrightWhite.
func (c Color) Bright() Color {
	if c >= ColorRed && c <= ColorWhite {
		return c + (ColorBrightRed - ColorRed)
	}
	return ColorBrightWhite
}
