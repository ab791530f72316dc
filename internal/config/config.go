// Package config loads the application configuration: defaults, a TOML file,
// environment overrides and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/runcmd"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger   logger.Config  `toml:"logger"`
	Editor   EditorConfig   `toml:"editor"`
	Runner   RunnerConfig   `toml:"runner"`
	Settings SettingsConfig `toml:"settings"`
}

// EditorConfig holds terminal host behaviour.
type EditorConfig struct {
	ScrollOff       int    `toml:"scroll_off"`
	SystemClipboard bool   `toml:"system_clipboard"`
	StatusBarHeight int    `toml:"status_bar_height"`
	RescanDelayMs   int    `toml:"rescan_delay_ms"`
	ThemeFile       string `toml:"theme_file"`
}

// RunnerConfig feeds the run-command synthesizer.
type RunnerConfig struct {
	// Interpreters overrides the program per language name, e.g. python = "python3.12".
	Interpreters map[string]string `toml:"interpreters"`
	TempDir      string            `toml:"temp_dir"`
	// Platform forces "unix" or "windows" shell conventions; empty uses the host's.
	Platform string `toml:"platform"`
}

// SettingsConfig locates the editor settings file and says how to watch it.
type SettingsConfig struct {
	Path           string `toml:"path"`
	PollIntervalMs int    `toml:"poll_interval_ms"`
	Watch          string `toml:"watch"`
}

var loadedConfig atomic.Pointer[Config]

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Editor: EditorConfig{
			ScrollOff:       DefaultScrollOff,
			SystemClipboard: SystemClipboard,
			StatusBarHeight: StatusBarHeight,
			RescanDelayMs:   int(DefaultRescanDelay / time.Millisecond),
		},
		Settings: SettingsConfig{
			PollIntervalMs: int(settings.DefaultPollInterval / time.Millisecond),
			Watch:          string(settings.ModePoll),
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/boss-editortab/config.toml, or empty when
// the user config dir is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// loadFromFile decodes filePath over cfg. A missing file is not an error.
// It returns the keys the file set that no field recognised.
func loadFromFile(filePath string, cfg *Config) ([]string, error) {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}
	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	var unknown []string
	for _, key := range metadata.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}

// validate resets invalid values to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Editor.ScrollOff < 0 {
		c.Editor.ScrollOff = defaults.Editor.ScrollOff
	}
	if c.Editor.StatusBarHeight <= 0 {
		c.Editor.StatusBarHeight = defaults.Editor.StatusBarHeight
	}
	if c.Editor.RescanDelayMs <= 0 {
		c.Editor.RescanDelayMs = defaults.Editor.RescanDelayMs
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Settings.PollIntervalMs <= 0 {
		c.Settings.PollIntervalMs = defaults.Settings.PollIntervalMs
	}
	switch settings.Mode(c.Settings.Watch) {
	case settings.ModePoll, settings.ModeNotify:
	default:
		c.Settings.Watch = defaults.Settings.Watch
	}
	switch c.Runner.Platform {
	case "", "unix", "windows":
	default:
		c.Runner.Platform = ""
	}
}

// LoadEnv reads a .env file from the working directory if one exists.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadConfig merges defaults, the config file, environment and flags, then
// validates the result. Errors reading the file leave the defaults in place;
// the error is returned so the caller can report it once logging is up.
// Unknown keys are returned as warnings for the same reason.
func LoadConfig(configFilePath string, flags *Flags, fs *pflag.FlagSet) (*Config, []string, error) {
	cfg := NewDefaultConfig()

	path := configFilePath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath()
	}

	var warnings []string
	var loadErr error
	if path != "" {
		fileCfg := NewDefaultConfig()
		unknown, err := loadFromFile(path, fileCfg)
		if err != nil {
			loadErr = err
		} else {
			cfg = fileCfg
			for _, key := range unknown {
				warnings = append(warnings, fmt.Sprintf("config file '%s': unrecognized key %s", path, key))
			}
		}
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logger.LogLevel = level
	}
	if flags != nil && fs != nil {
		flags.ApplyOverrides(fs, cfg)
	}

	cfg.validate()
	loadedConfig.Store(cfg)
	return cfg, warnings, loadErr
}

// Get returns the loaded configuration, or the defaults before LoadConfig ran.
func Get() *Config {
	if cfg := loadedConfig.Load(); cfg != nil {
		return cfg
	}
	return NewDefaultConfig()
}

// RescanDelay is the pause after an edit before entry points are re-detected.
func (c *Config) RescanDelay() time.Duration {
	return time.Duration(c.Editor.RescanDelayMs) * time.Millisecond
}

// SettingsPath is the editor settings file, defaulting to ~/.boss.
func (c *Config) SettingsPath() string {
	if c.Settings.Path != "" {
		return c.Settings.Path
	}
	return settings.DefaultPath()
}

// SettingsOptions configures the settings service.
func (c *Config) SettingsOptions() settings.Options {
	return settings.Options{
		Interval: time.Duration(c.Settings.PollIntervalMs) * time.Millisecond,
		Mode:     settings.Mode(c.Settings.Watch),
	}
}

// Synthesizer builds the run-command synthesizer from the runner section.
// Interpreter overrides naming unknown languages are skipped with a warning.
func (c *Config) Synthesizer() *runcmd.Synthesizer {
	interpreters := make(map[lang.Language]string, len(runcmd.DefaultInterpreters))
	for l, prog := range runcmd.DefaultInterpreters {
		interpreters[l] = prog
	}
	for name, prog := range c.Runner.Interpreters {
		l := lang.Parse(name)
		if l == lang.Unknown {
			logger.Warnf("config: ignoring interpreter for unknown language %q", name)
			continue
		}
		interpreters[l] = prog
	}
	s := runcmd.New(interpreters, c.Runner.TempDir)
	switch c.Runner.Platform {
	case "unix":
		s.Platform = runcmd.Unix
	case "windows":
		s.Platform = runcmd.Windows
	}
	return s
}
