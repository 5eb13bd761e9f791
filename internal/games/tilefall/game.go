// Package tilefall provides the tile-removal puzzle as a registry game.
package tilefall

import (
	"math/rand"
	"strconv"

	"github.com/vovakirdan/tilefall/internal/config"
	platformcore "github.com/vovakirdan/tilefall/internal/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/layouts"
	"github.com/vovakirdan/tilefall/internal/registry"
)

// Mode selects where the starting board comes from.
type Mode string

const (
	ModeRandom Mode = "random"
	ModeLayout Mode = "layout"
)

// Game IDs as registered.
const (
	IDRandom = "tilefall"
	IDLayout = "tilefall_layout"
)

const hudHeight = 3

// Package-level variables for configuration
var (
	configPath       string
	difficultyPreset = config.DifficultyNormal
	selectedLayout   string
	boardWidth       int
	boardHeight      int
)

// SetConfigPath sets a custom config file. Empty means the default search order.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the preset applied on every Reset.
func SetDifficultyPreset(p config.DifficultyPreset) {
	difficultyPreset = p
}

// SetLayout selects the layout used by layout mode. Empty means the first builtin.
func SetLayout(id string) {
	selectedLayout = id
}

// SetBoardSize overrides the configured board size for random boards.
// A non-positive dimension keeps the configured value.
func SetBoardSize(width, height int) {
	boardWidth = width
	boardHeight = height
}

// GetLayout returns the currently selected layout ID.
func GetLayout() string {
	return selectedLayout
}

func init() {
	registry.Register(IDRandom, func() registry.Game {
		return New()
	})
	registry.Register(IDLayout, func() registry.Game {
		return NewLayout()
	})
}

// Info describes how the current board was dealt.
// It carries everything needed to rebuild the starting grid.
type Info struct {
	Mode     Mode
	Seed     int64
	Width    int
	Height   int
	Palette  []core.Colour
	LayoutID string
}

// Game implements the tilefall puzzle.
type Game struct {
	mode     Mode
	layoutID string // Overrides the package-level layout selection
	cfg      config.TilefallConfig
	info     Info

	grid   *core.Grid
	cursor core.Coord
	hover  map[core.Coord]bool

	nextSeed int64
	moves    int
	paused   bool
	tooSmall bool
	loadErr  string

	// Screen dimensions
	screenW int
	screenH int

	// Calculated board position
	board platformcore.Rect
}

// New creates a game dealing random boards from the config.
func New() *Game {
	return &Game{mode: ModeRandom}
}

// NewLayout creates a game that starts from the selected layout.
func NewLayout() *Game {
	return &Game{mode: ModeLayout}
}

// NewLayoutWith creates a layout game pinned to one layout ID.
// Concurrent sessions use it instead of SetLayout.
func NewLayoutWith(id string) *Game {
	return &Game{mode: ModeLayout, layoutID: id}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeLayout {
		return IDLayout
	}
	return IDRandom
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeLayout {
		return "Tilefall: Layouts"
	}
	return "Tilefall"
}

// Description returns a one-line summary for menus.
func (g *Game) Description() string {
	if g.mode == ModeLayout {
		return "Clear hand-made starting boards"
	}
	return "Clear a random board of coloured tiles"
}

// Reset deals a new board.
func (g *Game) Reset(cfg platformcore.RuntimeConfig) {
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.moves = 0
	g.paused = false
	g.loadErr = ""

	tc, err := config.LoadTilefall(configPath)
	if err != nil {
		g.loadErr = err.Error()
		tc = config.DefaultTilefallConfig()
	}
	config.ApplyTilefallPreset(&tc, difficultyPreset)
	if boardWidth > 0 {
		tc.Board.Width = boardWidth
	}
	if boardHeight > 0 {
		tc.Board.Height = boardHeight
	}
	g.cfg = tc

	var grid *core.Grid
	switch g.mode {
	case ModeLayout:
		grid, err = g.dealLayout()
	default:
		grid, err = g.dealRandom(cfg.Seed)
	}
	if err != nil {
		g.loadErr = err.Error()
		g.grid = nil
		return
	}
	g.setGrid(grid)
}

func (g *Game) dealRandom(seed int64) (*core.Grid, error) {
	palette, err := g.cfg.ActivePalette()
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	grid, err := core.NewGrid(g.cfg.Board.Width, g.cfg.Board.Height, core.RandomPainter(rng, palette))
	if err != nil {
		return nil, err
	}
	g.nextSeed = rng.Int63()
	g.info = Info{
		Mode:    ModeRandom,
		Seed:    seed,
		Width:   grid.Width(),
		Height:  grid.Height(),
		Palette: palette,
	}
	return grid, nil
}

func (g *Game) dealLayout() (*core.Grid, error) {
	var (
		l   layouts.Layout
		err error
	)
	id := g.layoutID
	if id == "" {
		id = selectedLayout
	}
	if id != "" {
		l, err = layouts.Find(id)
	} else {
		var all []layouts.Layout
		all, err = layouts.All()
		if err == nil && len(all) == 0 {
			err = &layouts.NotFoundError{ID: "(any)"}
		}
		if err == nil {
			l = all[0]
		}
	}
	if err != nil {
		return nil, err
	}
	grid, err := l.NewGrid()
	if err != nil {
		return nil, err
	}
	g.info = Info{
		Mode:     ModeLayout,
		Width:    grid.Width(),
		Height:   grid.Height(),
		LayoutID: l.ID,
	}
	return grid, nil
}

// setGrid installs a board and recomputes everything derived from it.
func (g *Game) setGrid(grid *core.Grid) {
	g.grid = grid
	g.cursor = core.C(0, 0)
	g.calculateLayout()
	g.refreshHover()
}

// Resize adapts the board position to a new screen size.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.calculateLayout()
}

// calculateLayout centers the board below the HUD.
func (g *Game) calculateLayout() {
	if g.grid == nil {
		return
	}
	cellW := g.cellWidth()
	boardW := g.grid.Width()*cellW + 2
	boardH := g.grid.Height() + 2

	if g.screenW < boardW || g.screenH < hudHeight+boardH {
		g.tooSmall = true
		return
	}
	g.tooSmall = false

	g.board = platformcore.NewRect(
		(g.screenW-boardW)/2,
		hudHeight+(g.screenH-hudHeight-boardH)/2,
		boardW,
		boardH,
	)
}

func (g *Game) cellWidth() int {
	if g.cfg.Display.CellWidth <= 0 {
		return 2
	}
	return g.cfg.Display.CellWidth
}

// Step applies one frame of input.
func (g *Game) Step(in platformcore.InputFrame) platformcore.StepResult {
	if in.Has(platformcore.ActionRestart) {
		g.Reset(platformcore.RuntimeConfig{
			Seed:    g.nextSeed,
			ScreenW: g.screenW,
			ScreenH: g.screenH,
		})
		return platformcore.StepResult{State: g.State(), Dealt: true}
	}

	if in.Has(platformcore.ActionPause) {
		g.paused = !g.paused
	}

	if g.paused || g.tooSmall || g.grid == nil {
		return platformcore.StepResult{State: g.State()}
	}

	g.moveCursor(in)

	var move *platformcore.Move
	if p := in.Pointer; p != nil {
		if c, ok := g.CellAtScreen(p.X, p.Y); ok {
			g.cursor = c
			if p.Click {
				move = g.selectAt(c.X, c.Y)
			}
		}
	}
	if move == nil && (in.Has(platformcore.ActionConfirm) || in.Has(platformcore.ActionJump)) {
		move = g.selectAt(g.cursor.X, g.cursor.Y)
	}

	g.refreshHover()
	return platformcore.StepResult{State: g.State(), Move: move}
}

// moveCursor applies arrow actions. Up is toward larger y.
func (g *Game) moveCursor(in platformcore.InputFrame) {
	if in.Has(platformcore.ActionUp) {
		g.cursor.Y++
	}
	if in.Has(platformcore.ActionDown) {
		g.cursor.Y--
	}
	if in.Has(platformcore.ActionLeft) {
		g.cursor.X--
	}
	if in.Has(platformcore.ActionRight) {
		g.cursor.X++
	}
	g.cursor.X = platformcore.Clamp(g.cursor.X, 0, g.grid.Width()-1)
	g.cursor.Y = platformcore.Clamp(g.cursor.Y, 0, g.grid.Height()-1)
}

// selectAt resolves a selection. Returns nil when nothing was removed.
func (g *Game) selectAt(x, y int) *platformcore.Move {
	removed, err := core.ResolveSelection(g.grid, x, y)
	if err != nil || len(removed) == 0 {
		return nil
	}
	g.moves++
	return &platformcore.Move{X: x, Y: y, Removed: len(removed)}
}

func (g *Game) refreshHover() {
	g.hover = nil
	if g.grid == nil || !g.cfg.Display.HoverPreview {
		return
	}
	component, err := core.FindComponent(g.grid, g.cursor.X, g.cursor.Y)
	if err != nil || len(component) < 2 {
		return
	}
	g.hover = make(map[core.Coord]bool, len(component))
	for _, c := range component {
		g.hover[c] = true
	}
}

// CellAtScreen translates a screen position to a grid cell.
func (g *Game) CellAtScreen(sx, sy int) (core.Coord, bool) {
	if g.grid == nil || g.tooSmall {
		return core.Coord{}, false
	}
	return CellAt(g.board, g.cellWidth(), g.grid.Height(), sx, sy)
}

// Render draws the game to the screen.
func (g *Game) Render(dst *platformcore.Screen) {
	dst.Clear()

	g.renderHUD(dst)

	switch {
	case g.grid == nil:
		renderOverlay(dst, "No board", g.loadErr)
		return
	case g.tooSmall:
		renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}

	cursor := g.cursor
	RenderBoard(dst, g.board, g.grid.Snapshot(), BoardStyle{
		CellWidth: g.cellWidth(),
		Cursor:    &cursor,
		Highlight: g.hover,
	})

	switch {
	case g.grid.Remaining() == 0:
		renderOverlay(dst, "Board cleared in "+strconv.Itoa(g.moves)+" moves", "Press R for a new board")
	case g.paused:
		renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// renderHUD draws the top status bar.
func (g *Game) renderHUD(dst *platformcore.Screen) {
	hud := " " + g.Title()
	if g.grid != nil {
		hud += " | Moves: " + strconv.Itoa(g.moves) +
			" | Tiles: " + strconv.Itoa(g.grid.Remaining())
		if g.info.Mode == ModeLayout {
			hud += " | Layout: " + g.info.LayoutID
		} else {
			hud += " | Seed: " + strconv.FormatInt(g.info.Seed, 10)
		}
	}
	dst.DrawTextWithColor(0, 0, hud, platformcore.ColorCyan)

	dst.DrawTextWithColor(0, 1, " Arrows/Mouse: Move | Space/Click: Clear | R: New | P: Pause", platformcore.ColorGray)

	for x := 0; x < dst.Width(); x++ {
		dst.SetWithColor(x, 2, '─', platformcore.ColorGray)
	}
}

// State returns the current game state.
func (g *Game) State() platformcore.GameState {
	st := platformcore.GameState{Moves: g.moves, Paused: g.paused}
	if g.grid != nil {
		st.Remaining = g.grid.Remaining()
	}
	return st
}

// Info describes the current board's origin.
func (g *Game) Info() Info {
	return g.info
}

// Snapshot returns a copy of the current board.
func (g *Game) Snapshot() core.Snapshot {
	if g.grid == nil {
		return core.Snapshot{}
	}
	return g.grid.Snapshot()
}

// Cursor returns the cursor position in grid coordinates.
func (g *Game) Cursor() core.Coord {
	return g.cursor
}

// LoadError returns the last config or layout error, if any.
func (g *Game) LoadError() string {
	return g.loadErr
}

// DealGrid rebuilds a random board exactly as a game with the same seed
// and palette dealt it.
func DealGrid(width, height int, seed int64, palette []core.Colour) (*core.Grid, error) {
	return core.NewGrid(width, height, core.RandomPainter(rand.New(rand.NewSource(seed)), palette))
}
