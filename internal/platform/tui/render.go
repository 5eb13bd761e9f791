package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilefall/internal/core"
)

// RenderScreen converts a Screen buffer to a styled string using the current theme.
func RenderScreen(s *core.Screen) string {
	return RenderScreenWith(s, GetTheme())
}

// RenderScreenWith converts a Screen buffer to a styled string.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreenWith(s *core.Screen, theme Theme) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			sb.WriteString(styleFor(theme, startColor).Render(run.String()))
		}
	}
	return sb.String()
}

func styleFor(theme Theme, c core.Color) lipgloss.Style {
	if style, ok := theme.Colors[c]; ok {
		return style
	}
	return lipgloss.NewStyle()
}
