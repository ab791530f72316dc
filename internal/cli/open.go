package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/config"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/tui"
)

// newScreen is replaced in tests with a simulation screen.
var newScreen = tui.NewScreen

func newOpenCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "open [file]",
		Short: "Edit a file in the terminal",
		Long: `Open hosts one Code Editor tab in the terminal. Without a file the tab
starts empty. Run commands are printed to the log rather than the screen.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runOpen(cmd.Context(), e.cfg, path)
		},
	}
}

// loadThemes registers the user's theme directory and the configured theme
// file. Broken themes are logged and skipped.
func loadThemes(cfg *config.Config) *theme.Manager {
	themes := theme.NewManager()
	if dir := themesDir(); dir != "" {
		if n, err := themes.LoadDir(dir); err != nil {
			logger.Warnf("themes: %v", err)
		} else if n > 0 {
			logger.Debugf("loaded %d themes from %s", n, dir)
		}
	}
	if cfg.Editor.ThemeFile != "" {
		name, err := themes.LoadFile(cfg.Editor.ThemeFile)
		if err != nil {
			logger.Warnf("theme file: %v", err)
		} else if err := themes.SetTheme(name); err != nil {
			logger.Warnf("theme file: %v", err)
		}
	}
	return themes
}

func runOpen(ctx context.Context, cfg *config.Config, path string) (err error) {
	themes := loadThemes(cfg)
	screen, err := newScreen(themes.Current())
	if err != nil {
		return err
	}
	defer screen.Fini()

	app := tui.New(screen, tui.Options{
		Themes:          themes,
		ScrollOff:       cfg.Editor.ScrollOff,
		SystemClipboard: cfg.Editor.SystemClipboard,
		MessageTimeout:  config.MessageTimeout,
	})

	var abs string
	if path != "" {
		if abs, err = filepath.Abs(path); err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
	}
	s, err := newSession(cfg, hostServices{
		UI:       app.UI(),
		Notifier: host.LogNotifier{Sink: app.Notify},
		// run output would corrupt the screen
		Executor: &host.ShellExecutor{},
		Navigator: host.NavigatorFunc(func(target string, line, col int) error {
			if filepath.Clean(target) != abs {
				return fmt.Errorf("cannot open %s in this terminal", target)
			}
			return nil
		}),
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	if err := s.settings.Start(ctx); err != nil {
		return fmt.Errorf("watch settings: %w", err)
	}

	c, err := s.open(ctx, abs)
	if err != nil {
		return err
	}
	app.Attach(c)

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
