package core

import (
	"fmt"
	"strings"
)

// Colour is the colour held by a grid cell.
// The zero value is Empty, the "no tile present" marker.
type Colour uint8

const (
	Empty Colour = iota
	Red
	Green
	Blue
	Yellow
	Purple
	Cyan
	colourCount // Sentinel value for iteration
)

// MaxColours is the number of distinct non-empty colours.
const MaxColours = int(colourCount) - 1

// String returns the string representation of a colour.
func (c Colour) String() string {
	switch c {
	case Empty:
		return "empty"
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	case Purple:
		return "purple"
	case Cyan:
		return "cyan"
	default:
		return "unknown"
	}
}

// Char returns a single character representation for ASCII rendering.
func (c Colour) Char() rune {
	switch c {
	case Empty:
		return '.'
	case Red:
		return 'R'
	case Green:
		return 'G'
	case Blue:
		return 'B'
	case Yellow:
		return 'Y'
	case Purple:
		return 'P'
	case Cyan:
		return 'C'
	default:
		return '?'
	}
}

// IsEmpty reports whether c is the empty marker.
func (c Colour) IsEmpty() bool {
	return c == Empty
}

// ParseColour converts a name or single letter to a Colour.
// "." and "empty" parse to Empty.
func ParseColour(s string) (Colour, bool) {
	switch strings.ToLower(s) {
	case ".", "empty":
		return Empty, true
	case "red", "r":
		return Red, true
	case "green", "g":
		return Green, true
	case "blue", "b":
		return Blue, true
	case "yellow", "y":
		return Yellow, true
	case "purple", "p":
		return Purple, true
	case "cyan", "c":
		return Cyan, true
	default:
		return Empty, false
	}
}

// Palette returns the first n non-empty colours.
// n is clamped to [0, MaxColours].
func Palette(n int) []Colour {
	if n < 0 {
		n = 0
	}
	if n > MaxColours {
		n = MaxColours
	}
	p := make([]Colour, n)
	for i := range n {
		p[i] = Colour(i + 1)
	}
	return p
}

// MarshalText encodes the colour by name so boards serialize readably.
func (c Colour) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts anything ParseColour does.
func (c *Colour) UnmarshalText(text []byte) error {
	parsed, ok := ParseColour(string(text))
	if !ok {
		return fmt.Errorf("tilefall: unknown colour %q", text)
	}
	*c = parsed
	return nil
}
