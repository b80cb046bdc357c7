package layout

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bnema/wayosk/internal/logger"
)

//go:embed keyboards/*.yaml
var builtin embed.FS

const fileExt = ".yaml"

// Loader finds layouts in a user directory and among the built-in ones.
// User files override built-ins of the same name.
type Loader struct {
	Dir string
}

// NewLoader returns a loader that looks in dir before the built-in layouts.
// An empty dir disables user layouts.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load builds the layout selected by state. Wide arrangements prefer a
// "<name>_wide" variant. When nothing usable is found the built-in default is
// returned along with a warning in the log.
func (l *Loader) Load(state State) (*Layout, error) {
	for _, candidate := range state.Candidates() {
		lay, err := l.loadNamed(candidate)
		if errors.Is(err, ErrUnknownLayout) {
			continue
		}
		if err != nil {
			logger.Warnf("Layout %s unusable: %v", candidate, err)
			continue
		}
		lay.Arrangement = ArrangementBase
		if strings.HasSuffix(candidate, "_wide") {
			lay.Arrangement = ArrangementWide
		}
		return lay, nil
	}

	name := state.SelectLayout()
	if name == DefaultName {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	logger.Warnf("Layout %s not found, falling back to %s", name, DefaultName)
	fallback := state
	fallback.OverlayName = ""
	fallback.LayoutName = DefaultName
	fallback.Purpose = 0
	return l.Load(fallback)
}

// loadNamed tries the user directory first and then the built-in set.
func (l *Loader) loadNamed(name string) (*Layout, error) {
	if l.Dir != "" {
		path := filepath.Join(l.Dir, name+fileExt)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			lay, perr := Parse(name, data)
			if perr == nil {
				return lay, nil
			}
			logger.Warnf("Ignoring user layout %s: %v", path, perr)
		case !errors.Is(err, fs.ErrNotExist):
			logger.Warnf("Cannot read %s: %v", path, err)
		}
	}

	data, err := builtin.ReadFile("keyboards/" + name + fileExt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
	}
	return Parse(name, data)
}

// ParseFile reads and validates a layout file.
func ParseFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), fileExt)
	return Parse(name, data)
}

// Names lists every layout name available to the loader.
func (l *Loader) Names() []string {
	seen := make(map[string]struct{})
	entries, _ := fs.ReadDir(builtin, "keyboards")
	for _, e := range entries {
		seen[strings.TrimSuffix(e.Name(), fileExt)] = struct{}{}
	}
	if l.Dir != "" {
		if entries, err := os.ReadDir(l.Dir); err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), fileExt) {
					seen[strings.TrimSuffix(e.Name(), fileExt)] = struct{}{}
				}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
