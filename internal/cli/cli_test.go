package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
)

const mainSource = `package main

import "fmt"

func main() {
	fmt.Println("hello")
}
`

const libSource = `package lib

func Helper() int { return 1 }
`

// execute runs the command line with isolated config and settings files.
func execute(t *testing.T, settingsPath string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	if settingsPath == "" {
		settingsPath = filepath.Join(dir, "editor-settings.json")
	}
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args,
		"--logfile", "-",
		"--config", filepath.Join(dir, "config.toml"),
		"--settings", settingsPath,
	))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/x\n")
	mainPath := writeFile(t, filepath.Join(dir, "cmd", "main.go"), mainSource)
	writeFile(t, filepath.Join(dir, "lib", "lib.go"), libSource)
	writeFile(t, filepath.Join(dir, ".hidden", "main.go"), mainSource)
	writeFile(t, filepath.Join(dir, "vendor", "dep", "main.go"), mainSource)

	out, err := execute(t, "", "detect", dir, "--output", "json")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	var reports []fileReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1: %+v", len(reports), reports)
	}
	r := reports[0]
	if r.Path != mainPath {
		t.Errorf("path = %q, want %q", r.Path, mainPath)
	}
	if r.Language != "go" {
		t.Errorf("language = %q", r.Language)
	}
	if r.Root != dir {
		t.Errorf("root = %q, want %q", r.Root, dir)
	}
	if len(r.EntryPoints) != 1 {
		t.Fatalf("entry points = %+v", r.EntryPoints)
	}
	ep := r.EntryPoints[0]
	if ep.Line != 5 || ep.Function != "main" {
		t.Errorf("entry point = %+v", ep)
	}
	if !strings.HasPrefix(ep.Command, "go run ") || !strings.Contains(ep.Command, "main.go") {
		t.Errorf("command = %q", ep.Command)
	}
	if ep.Dir != dir {
		t.Errorf("dir = %q, want %q", ep.Dir, dir)
	}
}

func TestDetectFileWithoutEntryPoints(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "lib.go"), libSource)

	out, err := execute(t, "", "detect", path, "-o", "yaml")
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	var reports []fileReport
	if err := yaml.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(reports) != 1 || len(reports[0].EntryPoints) != 0 {
		t.Fatalf("reports = %+v", reports)
	}
}

func TestDetectText(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), mainSource)

	out, err := execute(t, "", "detect", path)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	for _, want := range []string{"main.go", "(go)", "main", "go run"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDetectMissingPath(t *testing.T) {
	if _, err := execute(t, "", "detect", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestRunPrintsCommand(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), mainSource)

	out, err := execute(t, "", "run", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out, "go run ") || !strings.Contains(out, "main.go") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "", "run", path, "--line", "5", "-o", "json")
	if err != nil {
		t.Fatalf("run --line 5: %v", err)
	}
	var rep runReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if rep.Line != 5 || rep.Function != "main" {
		t.Errorf("report = %+v", rep)
	}
}

func TestRunWrongLine(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), mainSource)

	_, err := execute(t, "", "run", path, "--line", "2")
	if !errors.Is(err, editortab.ErrNoEntryPoint) {
		t.Fatalf("err = %v, want ErrNoEntryPoint", err)
	}

	lib := writeFile(t, filepath.Join(t.TempDir(), "lib.go"), libSource)
	if _, err := execute(t, "", "run", lib); err == nil {
		t.Fatal("expected an error for a file without entry points")
	}
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/x\n")
	path := writeFile(t, filepath.Join(dir, "internal", "pkg", "a.go"), libSource)

	out, err := execute(t, "", "root", path)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if got := strings.TrimSpace(out); got != dir {
		t.Errorf("root = %q, want %q", got, dir)
	}
}

func TestTokensLine(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), mainSource)

	out, err := execute(t, "", "tokens", path, "--line", "5", "-o", "json")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	var lines []lineReport
	if err := json.Unmarshal([]byte(out), &lines); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(lines) != 1 || lines[0].Line != 5 {
		t.Fatalf("lines = %+v", lines)
	}
	var sawFunc bool
	for _, tk := range lines[0].Tokens {
		if tk.Text == "func" && tk.Type == "keyword" {
			sawFunc = true
		}
	}
	if !sawFunc {
		t.Errorf("no keyword token for func in %+v", lines[0].Tokens)
	}
}

func TestTokensUnsupportedLanguage(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), "just text\n")
	if _, err := execute(t, "", "tokens", path); err == nil {
		t.Fatal("expected an error for a file without a grammar")
	}
}

func TestSettingsCommand(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "boss", "editor-settings.json")

	out, err := execute(t, settingsPath, "settings", "--path")
	if err != nil {
		t.Fatalf("settings --path: %v", err)
	}
	if strings.TrimSpace(out) != settingsPath {
		t.Errorf("path = %q", out)
	}

	out, err = execute(t, settingsPath, "settings", "--init", "-o", "json")
	if err != nil {
		t.Fatalf("settings --init: %v", err)
	}
	var st map[string]any
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if st["tabSize"] != float64(4) || st["theme"] != "default" {
		t.Errorf("settings = %v", st)
	}
	if _, err := os.Stat(settingsPath); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version", "-o", "yaml")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var v versionInfo
	if err := yaml.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if v.Version != Version || v.PluginID == "" || v.PluginVersion == "" {
		t.Errorf("version = %+v", v)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	if _, err := execute(t, "", "version", "-o", "xml"); err == nil {
		t.Fatal("expected an error for an unknown output format")
	}
}

func TestOpenQuitsOnForceQuit(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "main.go"), mainSource)

	var screen tcell.SimulationScreen
	orig := newScreen
	newScreen = func(th *theme.Theme) (tcell.Screen, error) {
		screen = tcell.NewSimulationScreen("UTF-8")
		if err := screen.Init(); err != nil {
			return nil, err
		}
		screen.SetSize(60, 12)
		screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModCtrl)
		return screen, nil
	}
	t.Cleanup(func() { newScreen = orig })

	if _, err := execute(t, "", "open", path); err != nil {
		t.Fatalf("open: %v", err)
	}
	if screen == nil {
		t.Fatal("screen was never created")
	}
}
