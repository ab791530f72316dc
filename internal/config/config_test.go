package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/runcmd"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
[logger]
level = "debug"
disabled_tags = ["highlight"]

[editor]
scroll_off = 5
rescan_delay_ms = 150

[runner]
temp_dir = "/var/tmp"
platform = "windows"
[runner.interpreters]
python = "python3.12"
cobol = "cobc"

[settings]
path = "/etc/boss/editor.json"
watch = "notify"
bogus = 1
`)
	cfg, warnings, err := LoadConfig(path, nil, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Logger.LogLevel != "debug" || !reflect.DeepEqual(cfg.Logger.DisabledTags, []string{"highlight"}) {
		t.Errorf("logger = %+v", cfg.Logger)
	}
	if cfg.Editor.ScrollOff != 5 || cfg.RescanDelay() != 150*time.Millisecond {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.SettingsPath() != "/etc/boss/editor.json" || cfg.SettingsOptions().Mode != settings.ModeNotify {
		t.Errorf("settings = %+v", cfg.Settings)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one unknown key", warnings)
	}

	s := cfg.Synthesizer()
	if s.Platform != runcmd.Windows || s.TempDir != "/var/tmp" {
		t.Errorf("synthesizer = %+v", s)
	}
	if s.Interpreters[lang.Python] != "python3.12" || s.Interpreters[lang.Ruby] != "ruby" {
		t.Errorf("interpreters = %v", s.Interpreters)
	}
	if Get() != cfg {
		t.Error("Get() does not return the loaded config")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"), nil, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	def := NewDefaultConfig()
	if cfg.Editor != def.Editor || cfg.Settings != def.Settings {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "[editor\nscroll_off = ")
	cfg, _, err := LoadConfig(path, nil, nil)
	if err == nil {
		t.Fatal("LoadConfig() of malformed file returned no error")
	}
	if cfg.Editor.ScrollOff != DefaultScrollOff {
		t.Errorf("ScrollOff = %d, want default", cfg.Editor.ScrollOff)
	}
}

func TestValidateResetsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[editor]
scroll_off = -2
status_bar_height = 0
[settings]
watch = "inotify"
poll_interval_ms = -5
[runner]
platform = "plan9"
`)
	cfg, _, _ := LoadConfig(path, nil, nil)
	def := NewDefaultConfig()
	if cfg.Editor.ScrollOff != def.Editor.ScrollOff || cfg.Editor.StatusBarHeight != def.Editor.StatusBarHeight {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if cfg.Settings.Watch != string(settings.ModePoll) || cfg.Settings.PollIntervalMs != def.Settings.PollIntervalMs {
		t.Errorf("settings = %+v", cfg.Settings)
	}
	if cfg.Runner.Platform != "" {
		t.Errorf("platform = %q", cfg.Runner.Platform)
	}
}

func TestFlagOverridesOnlyWhenSet(t *testing.T) {
	path := writeConfig(t, "[editor]\nscroll_off = 7\nsystem_clipboard = false\n")
	var flags Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Register(fs)
	if err := fs.Parse([]string{"--loglevel", "warn", "--log-tags", "run, settings", "--settings-watch", "notify"}); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := LoadConfig(path, &flags, fs)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Logger.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.Logger.LogLevel)
	}
	if !reflect.DeepEqual(cfg.Logger.EnabledTags, []string{"run", "settings"}) {
		t.Errorf("EnabledTags = %v", cfg.Logger.EnabledTags)
	}
	if cfg.Settings.Watch != "notify" {
		t.Errorf("Watch = %q", cfg.Settings.Watch)
	}
	// unset flags keep the file values even though their defaults differ
	if cfg.Editor.ScrollOff != 7 || cfg.Editor.SystemClipboard {
		t.Errorf("editor = %+v", cfg.Editor)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "[logger]\nlevel = \"info\"\n")
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvLogLevel, "error")
	cfg, _, err := LoadConfig("", nil, nil)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Logger.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want env override", cfg.Logger.LogLevel)
	}
}

func TestLoadEnvWithoutFile(t *testing.T) {
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnv(); err != nil {
		t.Errorf("LoadEnv() without .env = %v", err)
	}
}

func TestSplitCommaList(t *testing.T) {
	if got := splitCommaList(" a, ,b "); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("splitCommaList() = %v", got)
	}
	if splitCommaList("") != nil {
		t.Error("splitCommaList(\"\") != nil")
	}
}
