package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDetectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file|dir>...",
		Short: "List runnable entry points and their run commands",
		Long: `Detect scans files for program entry points (main functions, Kotlin and
Java mains) and prints the command the run gutter would hand to the host.
Directories are searched recursively; hidden and build directories are
skipped and only files with an entry point are listed.

Example usage:
  boss-editortab detect main.go
  boss-editortab detect ./services --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keepEmpty := true
			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					return fmt.Errorf("path does not exist: %s", arg)
				}
				if info.IsDir() {
					keepEmpty = false
				}
			}
			files, err := collect(args)
			if err != nil {
				return err
			}

			s, err := newScanner(e.cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			reports, err := s.detectAll(cmd.Context(), files, keepEmpty)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), e.output, reports, func() string {
				return renderReports(reports)
			})
		},
	}
}

func renderReports(reports []fileReport) string {
	if len(reports) == 0 {
		return mutedStyle.Render("no entry points found") + "\n"
	}
	var b strings.Builder
	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n", headingStyle.Render(r.Path), labelStyle.Render("("+r.Language+")"))
		fmt.Fprintf(&b, "  %s %s\n", labelStyle.Render("root"), r.Root)
		if len(r.EntryPoints) == 0 {
			fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("no entry points"))
			continue
		}
		for _, ep := range r.EntryPoints {
			name := ep.Function
			if ep.Class != "" {
				name = ep.Class + "." + name
			}
			fmt.Fprintf(&b, "  %s %-4d %s\n", markerStyle.Render("▶"), ep.Line, name)
			fmt.Fprintf(&b, "         %s\n", commandStyle.Render(ep.Command))
		}
	}
	return b.String()
}
