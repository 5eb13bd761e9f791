// Package layouts loads fixed starting boards for tilefall.
// This package depends on core but core does not depend on layouts.
package layouts

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/tilefall/internal/games/tilefall/core"
	"github.com/vovakirdan/tilefall/internal/games/tilefall/layouts/formats"
)

// Layout is a complete starting board definition.
type Layout struct {
	ID       string
	Name     string
	Board    core.Snapshot
	Metadata map[string]string
	FilePath string
}

// Painter paints a new grid with the layout's colours.
func (l *Layout) Painter() core.Painter {
	return core.SnapshotPainter(l.Board)
}

// NewGrid builds a fresh grid for this layout.
func (l *Layout) NewGrid() (*core.Grid, error) {
	return core.NewGrid(l.Board.Width, l.Board.Height, l.Painter())
}

// Loader handles loading layouts from a file tree.
type Loader struct {
	Root string
	fsys fs.FS
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{Root: root, fsys: os.DirFS(root)}
}

// NewFSLoader creates a loader over an arbitrary file system.
func NewFSLoader(fsys fs.FS, root string) *Loader {
	return &Loader{Root: root, fsys: fsys}
}

// LoadAll recursively scans and loads all layout files.
// Invalid files are skipped. Layouts are sorted by ID.
func (l *Loader) LoadAll() ([]Layout, error) {
	var layouts []Layout

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		layout, err := l.LoadFile(p)
		if err != nil {
			// Skip invalid files
			return nil
		}
		layouts = append(layouts, layout)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(layouts, func(i, j int) bool {
		return layouts[i].ID < layouts[j].ID
	})
	return layouts, nil
}

// LoadFile loads a single layout file, relative to the loader root.
func (l *Loader) LoadFile(p string) (Layout, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Layout{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	parsed, err := parseByExtension(data, strings.ToLower(path.Ext(p)))
	if err != nil {
		return Layout{}, fmt.Errorf("parsing file %s: %w", p, err)
	}

	return Layout{
		ID:       parsed.ID,
		Name:     parsed.Name,
		Board:    parsed.Board,
		Metadata: parsed.Metadata,
		FilePath: path.Join(l.Root, p),
	}, nil
}

// LoadByID loads a specific layout by ID.
func (l *Loader) LoadByID(id string) (Layout, error) {
	layouts, err := l.LoadAll()
	if err != nil {
		return Layout{}, err
	}
	for _, layout := range layouts {
		if layout.ID == id {
			return layout, nil
		}
	}
	return Layout{}, fmt.Errorf("layout not found: %s", id)
}

// ListIDs returns all layout IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	layouts, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(layouts))
	for i, layout := range layouts {
		ids[i] = layout.ID
	}
	return ids, nil
}

func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

func parseByExtension(data []byte, ext string) (formats.Layout, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Layout{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
