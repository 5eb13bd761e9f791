package layouts

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns a loader over the layouts shipped with the binary.
func Builtin() *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		// Only possible if the embed pattern above is wrong.
		panic(err)
	}
	return NewFSLoader(sub, "builtin")
}

// UserDir returns ~/.tilefall/layouts, or empty if home is unavailable.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tilefall", "layouts")
}

// All returns builtin layouts followed by any user layouts whose IDs do not
// clash with a builtin one. A missing user directory is not an error.
func All() ([]Layout, error) {
	all, err := Builtin().LoadAll()
	if err != nil {
		return nil, err
	}

	dir := UserDir()
	if dir == "" {
		return all, nil
	}
	if _, statErr := os.Stat(dir); statErr != nil {
		return all, nil
	}

	user, err := NewLoader(dir).LoadAll()
	if err != nil {
		return all, nil
	}
	seen := make(map[string]bool, len(all))
	for _, l := range all {
		seen[l.ID] = true
	}
	for _, l := range user {
		if !seen[l.ID] {
			all = append(all, l)
		}
	}
	return all, nil
}

// Find returns the layout with the given ID from All.
func Find(id string) (Layout, error) {
	all, err := All()
	if err != nil {
		return Layout{}, err
	}
	for _, l := range all {
		if l.ID == id {
			return l, nil
		}
	}
	return Layout{}, &NotFoundError{ID: id}
}

// NotFoundError is returned by Find for unknown layout IDs.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "layout not found: " + e.ID
}
