// Package cli is the editortab command line: a terminal host for the editor
// tab plus one-shot commands over the same detection and run pipeline.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/config"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// env is what every command sees after the root's pre-run.
type env struct {
	flags    config.Flags
	cfg      *config.Config
	output   string
	closeLog func() error
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Code editor tab with run gutter, highlighting and project-aware run commands",
		Long: `boss-editortab hosts the Code Editor tab in a terminal and exposes its
detection pipeline on the command line.

Example usage:
  boss-editortab open main.go            # Edit a file
  boss-editortab detect ./src -o yaml    # List runnable entry points
  boss-editortab run App.java --line 3   # Print the command for an entry point`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: e.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.teardown()
		},
	}

	e.flags.Register(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&e.output, "output", "o", FormatText, "output format (text, json, yaml)")

	root.AddCommand(
		newOpenCommand(e),
		newDetectCommand(e),
		newRootResolveCommand(e),
		newRunCommand(e),
		newTokensCommand(e),
		newSettingsCommand(e),
		newVersionCommand(e),
	)
	return root
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (e *env) setup(cmd *cobra.Command, _ []string) error {
	switch e.output {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", e.output)
	}

	envErr := config.LoadEnv()
	cfg, warnings, loadErr := config.LoadConfig(e.flags.ConfigFilePath, &e.flags, cmd.Flags())
	e.cfg = cfg

	out, closeLog, err := logger.OpenOutput(cfg.Logger.LogFilePath, defaultLogPath())
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	e.closeLog = closeLog
	logger.Init(cfg.Logger, out)
	logger.Debugf("%s %s: command %q", config.AppName, Version, cmd.CommandPath())

	if envErr != nil {
		logger.Warnf("%v", envErr)
	}
	if loadErr != nil {
		logger.Errorf("using default configuration: %v", loadErr)
	}
	for _, w := range warnings {
		logger.Warnf("%s", w)
	}
	return nil
}

func (e *env) teardown() error {
	if e.closeLog == nil {
		return nil
	}
	err := e.closeLog()
	e.closeLog = nil
	return err
}

// defaultLogPath is the log file under the user cache dir, or the temp dir.
func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, config.AppName, config.DefaultLogFileName)
}

// themesDir is where user theme files live, next to the config file.
func themesDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, config.AppName, config.ThemesDirName)
}
