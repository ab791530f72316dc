package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

func newSettingsCommand(e *env) *cobra.Command {
	var (
		pathOnly  bool
		writeFile bool
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the editor settings in effect",
		Long: `Settings prints the editor preferences read from the settings file,
with defaults filled in. --init writes the current values back so the file
can be edited by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.cfg.SettingsPath()
			if pathOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			}
			st, err := settings.Load(path)
			if err != nil {
				return err
			}
			if writeFile {
				if err := settings.Save(path, st); err != nil {
					return err
				}
			}
			return render(cmd.OutOrStdout(), e.output, st, func() string {
				return renderSettings(path, st)
			})
		},
	}
	cmd.Flags().BoolVar(&pathOnly, "path", false, "only print the settings file path")
	cmd.Flags().BoolVar(&writeFile, "init", false, "write the settings file with defaults filled in")
	return cmd
}

func renderSettings(path string, st settings.Settings) string {
	rows := [][2]string{
		{"theme", st.Theme},
		{"fontSize", fmt.Sprint(st.FontSize)},
		{"tabSize", fmt.Sprint(st.TabSize)},
		{"insertSpaces", fmt.Sprint(st.InsertSpaces)},
		{"showLineNumbers", fmt.Sprint(st.ShowLineNumbers)},
		{"showRunGutter", fmt.Sprint(st.ShowRunGutter)},
		{"wordWrap", fmt.Sprint(st.WordWrap)},
		{"semanticHighlighting", fmt.Sprint(st.SemanticHighlighting)},
		{"autoSave", fmt.Sprint(st.AutoSave)},
		{"autoSaveDelayMs", fmt.Sprint(st.AutoSaveDelayMs)},
		{"maxFileSizeBytes", fmt.Sprint(st.MaxFileSizeBytes)},
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headingStyle.Render(path))
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-22s", r[0])), r[1])
	}
	return b.String()
}
