package editortab

import (
	"context"
	"errors"
	"testing"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

func TestMetadata(t *testing.T) {
	p := New(editortab.Options{})
	if p.PluginID() != ID || p.DisplayName() != "Code Editor Tab" || p.Version() != "1.0.0" || p.Author() != "Risa Labs" {
		t.Errorf("metadata = %s %s %s %s", p.PluginID(), p.DisplayName(), p.Version(), p.Author())
	}
}

func TestRegisterAndDispose(t *testing.T) {
	reg := host.NewRegistry()
	pctx := &plugin.Context{Tabs: reg, Content: host.NewLocalContent(0), UI: host.Inline{}}
	p := New(editortab.Options{})

	if err := p.Register(pctx); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := p.Register(pctx); !errors.Is(err, plugin.ErrTabTypeRegistered) {
		t.Errorf("second Register() error = %v", err)
	}
	types := reg.Types()
	if len(types) != 1 || types[0] != editortab.TabType {
		t.Fatalf("registered types = %+v", types)
	}

	tab, err := reg.Open(context.Background(), plugin.TabConfig{TypeID: editortab.TabType.ID}, pctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if tab.ID() == "" {
		t.Error("opened tab has no id")
	}
	if err := reg.CloseAll(); err != nil {
		t.Errorf("CloseAll() error = %v", err)
	}

	if err := p.Dispose(); err != nil {
		t.Fatalf("Dispose() error = %v", err)
	}
	if len(reg.Types()) != 0 {
		t.Error("tab type still registered after Dispose")
	}
	if err := p.Dispose(); err != nil {
		t.Errorf("second Dispose() error = %v", err)
	}
}

func TestRegisterWithoutRegistry(t *testing.T) {
	if err := New(editortab.Options{}).Register(&plugin.Context{}); err == nil {
		t.Error("Register() without a registry succeeded")
	}
}

func TestPluginManager(t *testing.T) {
	reg := host.NewRegistry()
	m := plugin.NewManager()
	if err := m.Register(New(editortab.Options{})); err != nil {
		t.Fatal(err)
	}
	if err := m.InitializePlugins(&plugin.Context{Tabs: reg}); err != nil {
		t.Fatalf("InitializePlugins() error = %v", err)
	}
	if _, ok := m.GetPlugin(ID); !ok {
		t.Error("plugin not found by id")
	}
	if err := m.ShutdownPlugins(); err != nil {
		t.Fatalf("ShutdownPlugins() error = %v", err)
	}
	if len(reg.Types()) != 0 {
		t.Error("shutdown left the tab type registered")
	}
}
