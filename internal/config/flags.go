package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// Flags holds values parsed from command-line flags. They only override the
// config when the user actually set them.
type Flags struct {
	ConfigFilePath  string
	LogLevel        string
	LogFilePath     string
	ScrollOff       int
	EnableTags      string
	DisableTags     string
	EnablePkgs      string
	DisablePkgs     string
	SystemClipboard bool
	SettingsPath    string
	SettingsWatch   string
	ThemeFile       string
	Platform        string
}

// Register defines the flags on fs, normally a cobra command's persistent set.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigFilePath, "config", "", fmt.Sprintf("path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	fs.StringVar(&f.LogLevel, "loglevel", "", "log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFilePath, "logfile", "", "path to write the log file ('-' for stderr)")
	fs.IntVar(&f.ScrollOff, "scrolloff", DefaultScrollOff, "lines of context above/below the cursor")
	fs.StringVar(&f.EnableTags, "log-tags", "", "comma-separated list of log tags to enable")
	fs.StringVar(&f.DisableTags, "log-disable-tags", "", "comma-separated list of log tags to disable")
	fs.StringVar(&f.EnablePkgs, "log-packages", "", "comma-separated list of packages to enable")
	fs.StringVar(&f.DisablePkgs, "log-disable-packages", "", "comma-separated list of packages to disable")
	fs.BoolVar(&f.SystemClipboard, "system-clipboard", SystemClipboard, "copy run commands to the system clipboard")
	fs.StringVar(&f.SettingsPath, "settings", "", "path to the editor settings JSON file")
	fs.StringVar(&f.SettingsWatch, "settings-watch", "", "settings reload mode (poll, notify)")
	fs.StringVar(&f.ThemeFile, "theme-file", "", "path to a TOML theme file")
	fs.StringVar(&f.Platform, "platform", "", "shell conventions for run commands (unix, windows)")
}

// ApplyOverrides copies every flag the user set on fs into cfg.
func (f *Flags) ApplyOverrides(fs *pflag.FlagSet, cfg *Config) {
	fs.Visit(func(fl *pflag.Flag) {
		logger.DebugTagf("config", "applying flag override: %s", fl.Name)
		switch fl.Name {
		case "loglevel":
			if f.LogLevel != "" {
				cfg.Logger.LogLevel = f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "scrolloff":
			if f.ScrollOff >= 0 {
				cfg.Editor.ScrollOff = f.ScrollOff
			}
		case "system-clipboard":
			cfg.Editor.SystemClipboard = f.SystemClipboard
		case "log-tags":
			cfg.Logger.EnabledTags = splitCommaList(f.EnableTags)
		case "log-disable-tags":
			cfg.Logger.DisabledTags = splitCommaList(f.DisableTags)
		case "log-packages":
			cfg.Logger.EnabledPackages = splitCommaList(f.EnablePkgs)
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = splitCommaList(f.DisablePkgs)
		case "settings":
			cfg.Settings.Path = f.SettingsPath
		case "settings-watch":
			cfg.Settings.Watch = f.SettingsWatch
		case "theme-file":
			cfg.Editor.ThemeFile = f.ThemeFile
		case "platform":
			cfg.Runner.Platform = f.Platform
		}
	})
}

func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
