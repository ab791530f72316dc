package plugin

import (
	"errors"
	"testing"
)

type fakePlugin struct {
	id          string
	registerErr error
	registered  int
	disposed    int
}

func (f *fakePlugin) PluginID() string    { return f.id }
func (f *fakePlugin) DisplayName() string { return "Fake " + f.id }
func (f *fakePlugin) Version() string     { return "0.0.1" }
func (f *fakePlugin) Description() string { return "" }
func (f *fakePlugin) Author() string      { return "" }
func (f *fakePlugin) URL() string         { return "" }
func (f *fakePlugin) Register(*Context) error {
	f.registered++
	return f.registerErr
}
func (f *fakePlugin) Dispose() error {
	f.disposed++
	return nil
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	good := &fakePlugin{id: "good"}
	bad := &fakePlugin{id: "bad", registerErr: errors.New("boom")}
	if err := m.Register(good); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(bad); err != nil {
		t.Fatal(err)
	}
	if err := m.Register(&fakePlugin{id: "good"}); err == nil {
		t.Error("duplicate Register() succeeded")
	}
	if err := m.Register(&fakePlugin{}); err == nil {
		t.Error("Register() with empty id succeeded")
	}

	err := m.InitializePlugins(&Context{})
	if err == nil || good.registered != 1 || bad.registered != 1 {
		t.Fatalf("InitializePlugins() = %v; registered good=%d bad=%d", err, good.registered, bad.registered)
	}

	if err := m.ShutdownPlugins(); err != nil {
		t.Fatalf("ShutdownPlugins() = %v", err)
	}
	if good.disposed != 1 || bad.disposed != 0 {
		t.Errorf("disposed good=%d bad=%d, want 1 and 0", good.disposed, bad.disposed)
	}
	// a second shutdown is a no-op
	_ = m.ShutdownPlugins()
	if good.disposed != 1 {
		t.Errorf("plugin disposed twice")
	}

	if p, ok := m.GetPlugin("good"); !ok || p != good {
		t.Error("GetPlugin() did not return the registered plugin")
	}
}
