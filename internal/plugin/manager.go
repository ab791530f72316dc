package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// Manager handles the registration, initialization and lifecycle of plugins.
type Manager struct {
	mu          sync.RWMutex
	plugins     map[string]DynamicPlugin
	initialized map[string]bool
}

// NewManager creates a new plugin manager.
func NewManager() *Manager {
	return &Manager{
		plugins:     make(map[string]DynamicPlugin),
		initialized: make(map[string]bool),
	}
}

// Register adds a plugin instance. Call it before InitializePlugins.
func (m *Manager) Register(p DynamicPlugin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := p.PluginID()
	if id == "" {
		return fmt.Errorf("plugin registration failed: plugin id cannot be empty")
	}
	if _, exists := m.plugins[id]; exists {
		return fmt.Errorf("plugin registration failed: plugin '%s' already registered", id)
	}

	m.plugins[id] = p
	logger.Debugf("Plugin Manager: Registered plugin '%s' (%s %s)", id, p.DisplayName(), p.Version())
	return nil
}

func (m *Manager) sorted() []DynamicPlugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.plugins))
	for id := range m.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]DynamicPlugin, len(ids))
	for i, id := range ids {
		out[i] = m.plugins[id]
	}
	return out
}

// InitializePlugins calls Register on every plugin in id order. A failing
// plugin is logged and skipped; the failures are returned joined.
func (m *Manager) InitializePlugins(pctx *Context) error {
	plugins := m.sorted()
	logger.Infof("Plugin Manager: Initializing %d plugins...", len(plugins))

	var errs []error
	for _, p := range plugins {
		if err := p.Register(pctx); err != nil {
			logger.Errorf("Plugin Manager: ERROR initializing plugin '%s': %v", p.PluginID(), err)
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.PluginID(), err))
			continue
		}
		m.mu.Lock()
		m.initialized[p.PluginID()] = true
		m.mu.Unlock()
		logger.Debugf("Plugin Manager: Initialized plugin '%s'", p.PluginID())
	}
	return errors.Join(errs...)
}

// ShutdownPlugins disposes every initialized plugin.
func (m *Manager) ShutdownPlugins() error {
	plugins := m.sorted()
	var errs []error
	for _, p := range plugins {
		m.mu.Lock()
		active := m.initialized[p.PluginID()]
		delete(m.initialized, p.PluginID())
		m.mu.Unlock()
		if !active {
			continue
		}
		logger.Debugf("Plugin Manager: Shutting down plugin '%s'...", p.PluginID())
		if err := p.Dispose(); err != nil {
			logger.Errorf("Plugin Manager: ERROR shutting down plugin '%s': %v", p.PluginID(), err)
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.PluginID(), err))
		}
	}
	return errors.Join(errs...)
}

// GetPlugin returns a registered plugin by id.
func (m *Manager) GetPlugin(id string) (DynamicPlugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, exists := m.plugins[id]
	return p, exists
}
