package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilefall/internal/core"
)

// Theme contains the visual styles shared by every screen.
type Theme struct {
	Name string

	// Screen colors used by RenderScreen
	Colors map[core.Color]lipgloss.Style

	// Menu styles
	MenuTitle       lipgloss.Style
	MenuItemNormal  lipgloss.Style
	MenuItemActive  lipgloss.Style
	MenuDescription lipgloss.Style

	// Status styles
	Help  lipgloss.Style
	Error lipgloss.Style
	Code  lipgloss.Style
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// DefaultTheme uses the terminal's basic ANSI palette.
func DefaultTheme() Theme {
	return Theme{
		Name: "default",
		Colors: map[core.Color]lipgloss.Style{
			core.ColorDefault:       lipgloss.NewStyle(),
			core.ColorRed:           fg("1"),
			core.ColorGreen:         fg("2"),
			core.ColorYellow:        fg("3"),
			core.ColorBlue:          fg("4"),
			core.ColorMagenta:       fg("5"),
			core.ColorCyan:          fg("6"),
			core.ColorWhite:         fg("7"),
			core.ColorBrightRed:     fg("9"),
			core.ColorBrightGreen:   fg("10"),
			core.ColorBrightYellow:  fg("11"),
			core.ColorBrightBlue:    fg("12"),
			core.ColorBrightMagenta: fg("13"),
			core.ColorBrightCyan:    fg("14"),
			core.ColorBrightWhite:   fg("15"),
			core.ColorGray:          fg("245"),
		},

		MenuTitle:       fg("51").Bold(true),
		MenuItemNormal:  fg("252"),
		MenuItemActive:  fg("226").Bold(true),
		MenuDescription: fg("245"),

		Help:  fg("241"),
		Error: fg("203").Bold(true),
		Code:  fg("229").Background(lipgloss.Color("57")).Bold(true).Padding(0, 1),
	}
}

// NeonTheme swaps the tile colors for saturated 256-color ones.
func NeonTheme() Theme {
	theme := DefaultTheme()
	theme.Name = "neon"
	theme.Colors = cloneColors(theme.Colors)
	theme.Colors[core.ColorRed] = fg("197")
	theme.Colors[core.ColorGreen] = fg("118")
	theme.Colors[core.ColorYellow] = fg("227")
	theme.Colors[core.ColorBlue] = fg("33")
	theme.Colors[core.ColorMagenta] = fg("171")
	theme.Colors[core.ColorCyan] = fg("87")
	return theme
}

// PastelTheme returns a softer palette.
func PastelTheme() Theme {
	theme := DefaultTheme()
	theme.Name = "pastel"
	theme.Colors = cloneColors(theme.Colors)
	theme.Colors[core.ColorRed] = fg("217")
	theme.Colors[core.ColorGreen] = fg("157")
	theme.Colors[core.ColorYellow] = fg("229")
	theme.Colors[core.ColorBlue] = fg("111")
	theme.Colors[core.ColorMagenta] = fg("183")
	theme.Colors[core.ColorCyan] = fg("123")
	return theme
}

func cloneColors(src map[core.Color]lipgloss.Style) map[core.Color]lipgloss.Style {
	dst := make(map[core.Color]lipgloss.Style, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

var themes = map[string]func() Theme{
	"default": DefaultTheme,
	"neon":    NeonTheme,
	"pastel":  PastelTheme,
}

// ThemeNames lists the available themes in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName looks up a theme. Empty means the default theme.
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		return DefaultTheme(), nil
	}
	f, ok := themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %v)", name, ThemeNames())
	}
	return f(), nil
}

// Global theme variable (can be changed at runtime)
var currentTheme = DefaultTheme()

// SetTheme sets the global theme.
func SetTheme(theme Theme) {
	currentTheme = theme
}

// GetTheme returns the current global theme.
func GetTheme() Theme {
	return currentTheme
}
