package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/layouts"
)

// LayoutMenuModel is the layout picker for layout mode.
type LayoutMenuModel struct {
	cursor       int
	width        int
	height       int
	layouts      []layouts.Layout
	loadErr      string
	selected     string
	quitting     bool
	back         bool
	scrollOffset int
	theme        Theme
}

// NewLayoutMenuModel creates a picker over the builtin and user layouts.
func NewLayoutMenuModel(width, height int) LayoutMenuModel {
	m := LayoutMenuModel{
		width:  width,
		height: height,
		theme:  GetTheme(),
	}
	all, err := layouts.All()
	if err != nil {
		m.loadErr = err.Error()
	}
	m.layouts = all
	return m
}

// Init initializes the model.
func (m LayoutMenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m LayoutMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateScroll()
		return m, nil
	}
	return m, nil
}

func (m LayoutMenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
			m.updateScroll()
		}
	case MenuActionDown:
		if m.cursor < len(m.layouts)-1 {
			m.cursor++
			m.updateScroll()
		}
	case MenuActionSelect:
		if len(m.layouts) > 0 {
			m.selected = m.layouts[m.cursor].ID
			return m, tea.Quit
		}
	case MenuActionBack:
		m.back = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *LayoutMenuModel) visibleItems() int {
	visible := m.height - 10 // header and footer
	if visible < 3 {
		visible = 3
	}
	return visible
}

// updateScroll adjusts scroll offset to keep cursor visible.
func (m *LayoutMenuModel) updateScroll() {
	visible := m.visibleItems()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

// View renders the layout list.
func (m LayoutMenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("L A Y O U T S"), m.width))
	b.WriteString("\n\n")

	if m.loadErr != "" {
		b.WriteString(centerText(m.theme.Error.Render(m.loadErr), m.width))
		b.WriteString("\n\n")
	}
	if len(m.layouts) == 0 {
		b.WriteString(centerText(m.theme.MenuDescription.Render("No layouts found"), m.width))
		b.WriteString("\n")
	}

	end := m.scrollOffset + m.visibleItems()
	if end > len(m.layouts) {
		end = len(m.layouts)
	}
	for i := m.scrollOffset; i < end; i++ {
		l := m.layouts[i]
		cursor := "  "
		style := m.theme.MenuItemNormal
		if i == m.cursor {
			cursor = "> "
			style = m.theme.MenuItemActive
		}
		line := fmt.Sprintf("%s%-20s %2dx%-2d %3d tiles", cursor, l.Name, l.Board.Width, l.Board.Height, l.Board.Remaining())
		b.WriteString(centerText(style.Render(line), m.width))
		b.WriteString("\n")
	}

	if m.scrollOffset > 0 {
		b.WriteString(centerText(m.theme.MenuDescription.Render("... more above ..."), m.width))
		b.WriteString("\n")
	}
	if end < len(m.layouts) {
		b.WriteString(centerText(m.theme.MenuDescription.Render("... more below ..."), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.Help.Render("Up/Down: Navigate  |  Enter: Play  |  Esc: Back  |  Q: Quit"), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen layout ID, or "" if none.
func (m LayoutMenuModel) Selected() string {
	return m.selected
}

// IsQuitting returns true if user wants to quit.
func (m LayoutMenuModel) IsQuitting() bool {
	return m.quitting
}

// WantsBack returns true if user pressed back.
func (m LayoutMenuModel) WantsBack() bool {
	return m.back
}

// RunLayoutSelector runs the layout picker. An empty ID means the user backed out.
func RunLayoutSelector(cfg core.RuntimeConfig) (id string, quit bool, err error) {
	finalModel, err := tea.NewProgram(NewLayoutMenuModel(cfg.ScreenW, cfg.ScreenH), tea.WithAltScreen()).Run()
	if err != nil {
		return "", false, err
	}
	m, ok := finalModel.(LayoutMenuModel)
	if !ok {
		return "", true, nil
	}
	return m.Selected(), m.IsQuitting(), nil
}
