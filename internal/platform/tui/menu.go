package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall"
	"github.com/vovakirdan/tilefall/internal/registry"
)

// ItemKind tells the caller what a menu entry leads to.
type ItemKind int

const (
	ItemGame    ItemKind = iota // Play a registered game directly
	ItemLayouts                 // Pick a layout, then play it
	ItemShared                  // Create, join, or watch a shared table
	ItemHistory                 // Browse the game journal
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Kind        ItemKind
	GameID      string
	Title       string
	Description string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	config   core.RuntimeConfig
	theme    Theme
	quitting bool
	selected *MenuItem
}

// MenuItems builds the main menu entries from the registry.
// Shared tables are only offered when online is true.
func MenuItems(online bool) []MenuItem {
	games := registry.List()
	items := make([]MenuItem, 0, len(games)+2)

	for _, g := range games {
		kind := ItemGame
		if g.ID == tilefall.IDLayout {
			kind = ItemLayouts
		}
		items = append(items, MenuItem{
			Kind:        kind,
			GameID:      g.ID,
			Title:       g.Title,
			Description: g.Description,
		})
	}
	if online {
		items = append(items, MenuItem{
			Kind:        ItemShared,
			GameID:      tilefall.IDRandom,
			Title:       "Shared Table",
			Description: "Clear one board together, or watch others play",
		})
	}
	items = append(items, MenuItem{
		Kind:        ItemHistory,
		Title:       "History",
		Description: "Past boards and moves",
	})
	return items
}

// NewMenuModel creates a new menu model.
func NewMenuModel(items []MenuItem, cfg core.RuntimeConfig) MenuModel {
	return MenuModel{
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
		theme:  GetTheme(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case MenuActionHistory:
		for i := range m.items {
			if m.items[i].Kind == ItemHistory {
				selected := m.items[i]
				m.selected = &selected
				return m, tea.Quit
			}
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("T I L E F A L L"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.theme.MenuDescription.Render("Remove groups of matching tiles until the board is empty"), m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		style := m.theme.MenuItemNormal
		if i == m.cursor {
			cursor = "> "
			style = m.theme.MenuItemActive
		}
		b.WriteString(centerText(style.Render(cursor+item.Title), m.width))
		b.WriteString("\n")
	}

	if len(m.items) > 0 {
		b.WriteString("\n")
		b.WriteString(centerText(m.theme.MenuDescription.Render(m.items[m.cursor].Description), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Tab: History  |  Q: Quit"
	b.WriteString(centerText(m.theme.Help.Render(controls), m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers text within given width.
// Width is measured in cells so styled text centers correctly.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}

// MenuResult holds the result of running the menu.
type MenuResult struct {
	Item   *MenuItem
	Config core.RuntimeConfig
	Quit   bool
}

// RunMenu runs the menu and returns the selection result.
func RunMenu(items []MenuItem, cfg core.RuntimeConfig) (MenuResult, error) {
	finalModel, err := tea.NewProgram(NewMenuModel(items, cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return MenuResult{Config: cfg}, err
	}

	m, ok := finalModel.(MenuModel)
	if !ok {
		return MenuResult{Config: cfg, Quit: true}, nil
	}

	result := MenuResult{Config: m.Config()}
	if m.IsQuitting() || m.Selected() == nil {
		result.Quit = true
		return result, nil
	}
	result.Item = m.Selected()
	return result, nil
}
