// Package editortab is the loadable plugin that contributes the "Code Editor"
// tab type to the host.
package editortab

import (
	"errors"
	"fmt"
	"sync"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

const (
	ID          = "ai.rever.boss.plugin.dynamic.editortab"
	Name        = "Code Editor Tab"
	Version     = "1.0.0"
	Description = "Code editor tab with syntax highlighting, run gutter and file editing"
	Author      = "Risa Labs"
	URL         = "https://github.com/risa-labs-inc/boss-plugin-editor-tab"
)

var _ plugin.DynamicPlugin = (*Plugin)(nil)

// Plugin registers the editor tab type.
type Plugin struct {
	opts editortab.Options

	mu   sync.Mutex
	tabs plugin.TabRegistry
}

// New creates the plugin. opts are shared by every tab it creates.
func New(opts editortab.Options) *Plugin {
	return &Plugin{opts: opts}
}

func (p *Plugin) PluginID() string    { return ID }
func (p *Plugin) DisplayName() string { return Name }
func (p *Plugin) Version() string     { return Version }
func (p *Plugin) Description() string { return Description }
func (p *Plugin) Author() string      { return Author }
func (p *Plugin) URL() string         { return URL }

// Register adds the editor tab type to the host's registry.
func (p *Plugin) Register(pctx *plugin.Context) error {
	if pctx == nil || pctx.Tabs == nil {
		return errors.New("editortab: host provides no tab registry")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tabs != nil {
		return fmt.Errorf("editortab: %w", plugin.ErrTabTypeRegistered)
	}
	if err := pctx.Tabs.RegisterTabType(editortab.TabType, editortab.Factory(p.opts)); err != nil {
		return fmt.Errorf("editortab: register tab type: %w", err)
	}
	p.tabs = pctx.Tabs
	logger.Infof("plugin %s %s registered tab type %q", ID, Version, editortab.TabType.ID)
	return nil
}

// Dispose removes the tab type again. Open tabs are left to the host.
func (p *Plugin) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tabs == nil {
		return nil
	}
	err := p.tabs.UnregisterTabType(editortab.TabType.ID)
	p.tabs = nil
	if err != nil {
		return fmt.Errorf("editortab: unregister tab type: %w", err)
	}
	logger.Debugf("plugin %s disposed", ID)
	return nil
}
