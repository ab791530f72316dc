package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// ErrUnknownTheme is returned by SetTheme for a name that was never loaded.
var ErrUnknownTheme = errors.New("unknown theme")

// Manager holds the loaded themes and the active one. Names are matched
// case-insensitively.
type Manager struct {
	mu     sync.RWMutex
	themes map[string]*Theme
	active *Theme
}

// NewManager creates a manager with the built-in themes, Dark active.
func NewManager() *Manager {
	m := &Manager{themes: make(map[string]*Theme)}
	m.add(Dark)
	m.add(Light)
	m.active = Dark
	return m
}

func (m *Manager) add(t *Theme) {
	key := strings.ToLower(t.Name)
	if existing, ok := m.themes[key]; ok {
		logger.Debugf("theme %q replaces %q", t.Name, existing.Name)
	}
	m.themes[key] = t
}

// LoadFile loads one theme file and returns its name.
func (m *Manager) LoadFile(path string) (string, error) {
	t, err := LoadFile(path)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.add(t)
	m.mu.Unlock()
	return t.Name, nil
}

// LoadDir loads every .toml file in dir. A missing dir is not an error; bad
// files are skipped.
func (m *Manager) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read theme dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".toml") {
			continue
		}
		if _, err := m.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			logger.Warnf("skipping theme: %v", err)
			continue
		}
		n++
	}
	logger.Infof("loaded %d theme(s) from %s", n, dir)
	return n, nil
}

// Current returns the active theme.
func (m *Manager) Current() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// SetTheme activates a loaded theme.
func (m *Manager) SetTheme(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.themes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownTheme, name)
	}
	if t != m.active {
		m.active = t
		logger.Infof("theme set to %s", t.Name)
	}
	return nil
}

// List returns the loaded theme names, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.themes))
	for _, t := range m.themes {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
