package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/config"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/project"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
	editortabplugin "github.com/risa-labs-inc/boss-plugin-editor-tab/plugins/editortab"
)

// hostServices are the capabilities a particular front end contributes.
type hostServices struct {
	UI        plugin.UIThread
	Notifier  plugin.Notifier
	Executor  plugin.Executor
	Navigator plugin.Navigator
	Titles    plugin.TitleProviderFactory
}

// session is a minimal plugin host: the settings service, the project root
// cache, a tab registry and the loaded plugins.
type session struct {
	settings *settings.Service
	resolver *project.Resolver
	registry *host.Registry
	plugins  *plugin.Manager
	pctx     *plugin.Context
}

func newSession(cfg *config.Config, hs hostServices) (*session, error) {
	resolver, err := project.NewResolver(project.DefaultCacheTTL)
	if err != nil {
		return nil, err
	}
	svc := settings.New(cfg.SettingsPath(), cfg.SettingsOptions())
	s := &session{
		settings: svc,
		resolver: resolver,
		registry: host.NewRegistry(),
		plugins:  plugin.NewManager(),
	}
	if hs.UI == nil {
		hs.UI = host.Inline{}
	}
	if hs.Titles == nil {
		hs.Titles = host.NewTitles(nil)
	}
	if hs.Notifier == nil {
		hs.Notifier = host.LogNotifier{}
	}
	s.pctx = &plugin.Context{
		Tabs: s.registry,
		Content: &host.LocalContent{MaxSize: func() int64 {
			return svc.Current().MaxFileSizeBytes
		}},
		Titles:    hs.Titles,
		Executor:  hs.Executor,
		Navigator: hs.Navigator,
		Notifier:  hs.Notifier,
		UI:        hs.UI,
		Settings:  svc,
	}

	p := editortabplugin.New(editortab.Options{
		Synthesizer: cfg.Synthesizer(),
		Resolver:    resolver,
		RescanDelay: cfg.RescanDelay(),
	})
	if err := s.plugins.Register(p); err != nil {
		resolver.Close()
		return nil, err
	}
	if err := s.plugins.InitializePlugins(s.pctx); err != nil {
		resolver.Close()
		return nil, fmt.Errorf("initialize plugins: %w", err)
	}
	return s, nil
}

// open creates an editor tab for path through the registry, the way a host
// opens any tab type. An empty path opens an untitled tab.
func (s *session) open(ctx context.Context, path string) (*editortab.Component, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		path = abs
	}
	tab, err := s.registry.Open(ctx, editortab.NewTabData("", path).Config(), s.pctx)
	if err != nil {
		return nil, err
	}
	c, ok := tab.(*editortab.Component)
	if !ok {
		_ = s.registry.CloseTab(tab.ID())
		return nil, fmt.Errorf("tab type %q did not produce an editor", tab.TabType().ID)
	}
	logger.Debugf("opened %q as tab %s", path, c.ID())
	return c, nil
}

// Close closes every tab, unloads the plugins and stops the services.
func (s *session) Close() error {
	errs := []error{s.registry.CloseAll(), s.plugins.ShutdownPlugins(), s.settings.Close()}
	s.resolver.Close()
	return errors.Join(errs...)
}
