package host

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

func TestLocalContentReadFile(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.go")
	big := filepath.Join(dir, "big.txt")
	_ = os.WriteFile(small, []byte("package main\n"), 0o644)
	_ = os.WriteFile(big, bytes.Repeat([]byte("x"), 64), 0o644)

	c := NewLocalContent(32)
	ctx := context.Background()

	if r := c.ReadFile(ctx, small); r.Status != plugin.ReadSuccess || r.Content != "package main\n" {
		t.Errorf("small: %+v", r)
	}
	if r := c.ReadFile(ctx, big); r.Status != plugin.ReadTooLarge || r.SizeBytes != 64 || r.MaxSizeBytes != 32 {
		t.Errorf("big: %+v", r)
	}
	if r := c.ReadFile(ctx, filepath.Join(dir, "missing")); r.Status != plugin.ReadNotFound {
		t.Errorf("missing: %+v", r)
	}
	if r := c.ReadFile(ctx, dir); r.Status != plugin.ReadError || r.Message == "" {
		t.Errorf("directory: %+v", r)
	}
	if _, err := c.Read(big); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Read(big) error = %v, want ErrFileTooLarge", err)
	}
}

func TestLocalContentWriteFileKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.sh")
	_ = os.WriteFile(path, []byte("old"), 0o755)
	c := NewLocalContent(0)
	if err := c.WriteFile(context.Background(), path, "new"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	info, _ := os.Stat(path)
	if string(data) != "new" {
		t.Errorf("content = %q", data)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %v, want 0755", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestDetectLanguage(t *testing.T) {
	c := NewLocalContent(0)
	if got := c.DetectLanguage("a/b/main.rs"); got != "rust" {
		t.Errorf("DetectLanguage(main.rs) = %q", got)
	}
	if got := c.DetectLanguage("notes.unknownext"); got != "text" {
		t.Errorf("DetectLanguage(unknown) = %q", got)
	}
}

type stubTab struct {
	id     string
	closed bool
}

func (s *stubTab) ID() string                  { return s.id }
func (s *stubTab) TabType() plugin.TabTypeInfo { return plugin.TabTypeInfo{ID: "stub"} }
func (s *stubTab) Close() error                { s.closed = true; return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	var made []*stubTab
	factory := func(_ context.Context, cfg plugin.TabConfig, _ *plugin.Context) (plugin.TabComponent, error) {
		tab := &stubTab{id: cfg.ID}
		made = append(made, tab)
		return tab, nil
	}
	info := plugin.TabTypeInfo{ID: "stub", DisplayName: "Stub"}
	if err := r.RegisterTabType(info, factory); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterTabType(info, factory); !errors.Is(err, plugin.ErrTabTypeRegistered) {
		t.Errorf("duplicate RegisterTabType() = %v", err)
	}

	tab, err := r.Open(context.Background(), plugin.TabConfig{TypeID: "stub"}, &plugin.Context{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(tab.ID()) != 36 {
		t.Errorf("generated id %q is not a uuid", tab.ID())
	}
	if _, err := r.Open(context.Background(), plugin.TabConfig{TypeID: "nope"}, nil); !errors.Is(err, plugin.ErrTabTypeUnknown) {
		t.Errorf("Open(unknown) error = %v", err)
	}
	second, _ := r.Open(context.Background(), plugin.TabConfig{ID: "fixed", TypeID: "stub"}, nil)
	if second.ID() != "fixed" {
		t.Errorf("Open() ignored the supplied id")
	}

	if err := r.CloseAll(); err != nil {
		t.Fatalf("CloseAll() = %v", err)
	}
	for _, m := range made {
		if !m.closed {
			t.Errorf("tab %s not closed", m.id)
		}
	}
	if err := r.UnregisterTabType("stub"); err != nil {
		t.Fatal(err)
	}
	if len(r.Types()) != 0 {
		t.Errorf("Types() after unregister = %v", r.Types())
	}
}

func TestTitles(t *testing.T) {
	var changes []string
	titles := NewTitles(func(id, title string) { changes = append(changes, id+"="+title) })
	titles.Provider("t1").UpdateTitle("main.go *")
	if titles.Title("t1") != "main.go *" || len(changes) != 1 || changes[0] != "t1=main.go *" {
		t.Errorf("title = %q, changes = %v", titles.Title("t1"), changes)
	}
}

func TestQueue(t *testing.T) {
	woken := 0
	q := NewQueue(4, func() { woken++ })
	n := 0
	q.Post(func() { n++ })
	q.Post(func() { n++ })
	if n != 0 {
		t.Fatal("Post() ran work before Drain()")
	}
	if ran := q.Drain(); ran != 2 || n != 2 || woken != 2 {
		t.Errorf("Drain() = %d, n = %d, woken = %d", ran, n, woken)
	}
}

func TestShellExecutor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	dir := t.TempDir()
	var out bytes.Buffer
	e := &ShellExecutor{Stdout: &out}
	if err := e.Execute(context.Background(), "echo 'it'\\''s' && pwd", dir); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != "it's" {
		t.Errorf("output = %q", out.String())
	}
	if err := e.Execute(context.Background(), "exit 3", dir); err == nil {
		t.Error("Execute() of failing command returned nil")
	}
}
