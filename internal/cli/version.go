package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	editortabplugin "github.com/risa-labs-inc/boss-plugin-editor-tab/plugins/editortab"
)

var (
	// Version is set during build time
	Version = "dev"
	// GitCommit is set during build time
	GitCommit = "unknown"
	// BuildDate is set during build time
	BuildDate = "unknown"
)

type versionInfo struct {
	Version       string `json:"version" yaml:"version"`
	GitCommit     string `json:"gitCommit" yaml:"gitCommit"`
	BuildDate     string `json:"buildDate" yaml:"buildDate"`
	PluginID      string `json:"pluginId" yaml:"pluginId"`
	PluginVersion string `json:"pluginVersion" yaml:"pluginVersion"`
}

func newVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := versionInfo{
				Version:       Version,
				GitCommit:     GitCommit,
				BuildDate:     BuildDate,
				PluginID:      editortabplugin.ID,
				PluginVersion: editortabplugin.Version,
			}
			return render(cmd.OutOrStdout(), e.output, v, func() string {
				return fmt.Sprintf("%s %s (commit %s, built %s)\n%s %s\n",
					cmd.Root().Name(), v.Version, v.GitCommit, v.BuildDate, v.PluginID, v.PluginVersion)
			})
		},
	}
}
