package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

type tabType struct {
	info    plugin.TabTypeInfo
	factory plugin.TabFactory
}

// Registry keeps the registered tab types and the tabs opened from them.
type Registry struct {
	mu    sync.Mutex
	types map[string]tabType
	tabs  map[string]plugin.TabComponent
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]tabType),
		tabs:  make(map[string]plugin.TabComponent),
	}
}

// RegisterTabType implements plugin.TabRegistry.
func (r *Registry) RegisterTabType(info plugin.TabTypeInfo, factory plugin.TabFactory) error {
	if info.ID == "" || factory == nil {
		return fmt.Errorf("register tab type: id and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[info.ID]; ok {
		return fmt.Errorf("register tab type %q: %w", info.ID, plugin.ErrTabTypeRegistered)
	}
	r.types[info.ID] = tabType{info: info, factory: factory}
	logger.Debugf("registered tab type %q (%s)", info.ID, info.DisplayName)
	return nil
}

// UnregisterTabType implements plugin.TabRegistry. Open tabs of the type stay open.
func (r *Registry) UnregisterTabType(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return fmt.Errorf("unregister tab type %q: %w", id, plugin.ErrTabTypeUnknown)
	}
	delete(r.types, id)
	return nil
}

// Types lists the registered tab types by id.
func (r *Registry) Types() []plugin.TabTypeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]plugin.TabTypeInfo, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Open creates a tab of cfg.TypeID. A missing id gets a random one.
func (r *Registry) Open(ctx context.Context, cfg plugin.TabConfig, pctx *plugin.Context) (plugin.TabComponent, error) {
	r.mu.Lock()
	t, ok := r.types[cfg.TypeID]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("open tab: %w %q", plugin.ErrTabTypeUnknown, cfg.TypeID)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	tab, err := t.factory(ctx, cfg, pctx)
	if err != nil {
		return nil, fmt.Errorf("open %s tab: %w", t.info.DisplayName, err)
	}
	r.mu.Lock()
	r.tabs[tab.ID()] = tab
	r.order = append(r.order, tab.ID())
	r.mu.Unlock()
	return tab, nil
}

// Tab returns an open tab by id.
func (r *Registry) Tab(id string) (plugin.TabComponent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tab, ok := r.tabs[id]
	return tab, ok
}

// CloseTab closes and forgets one tab.
func (r *Registry) CloseTab(id string) error {
	r.mu.Lock()
	tab, ok := r.tabs[id]
	delete(r.tabs, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("close tab %q: no such tab", id)
	}
	return tab.Close()
}

// CloseAll closes every open tab, most recent first.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	ids := append([]string(nil), r.order...)
	r.mu.Unlock()
	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		if err := r.CloseTab(ids[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ plugin.TabRegistry = (*Registry)(nil)
