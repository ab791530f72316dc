package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/entrypoint"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/project"
)

func newRunCommand(e *env) *cobra.Command {
	var (
		line int
		exec bool
	)
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Print or execute the run command for an entry point",
		Long: `Run synthesizes the command for the entry point on --line (1-based), or
the first entry point in the file, and prints it. With --exec the command is
run through the platform shell in its working directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newScanner(e.cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			rep, eps, err := s.detectFile(args[0])
			if err != nil {
				return err
			}
			idx, err := pickEntryPoint(eps, line)
			if err != nil {
				return fmt.Errorf("%s: %w", rep.Path, err)
			}
			run := rep.EntryPoints[idx]

			if !exec {
				return render(cmd.OutOrStdout(), e.output, run, func() string {
					return run.Command + "\n"
				})
			}
			logger.Infof("run: %s (in %s)", run.Command, run.Dir)
			ex := &host.ShellExecutor{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
			return ex.Execute(cmd.Context(), run.Command, run.Dir)
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "1-based line of the entry point (default: the first one)")
	cmd.Flags().BoolVarP(&exec, "exec", "x", false, "execute the command instead of printing it")
	return cmd
}

// pickEntryPoint returns the index of the entry point on the 1-based line, or
// of the first one when line is zero.
func pickEntryPoint(eps []entrypoint.EntryPoint, line int) (int, error) {
	if len(eps) == 0 {
		return 0, errors.New("no entry points")
	}
	if line <= 0 {
		return 0, nil
	}
	for i, ep := range eps {
		if ep.Line == line-1 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w %d", editortab.ErrNoEntryPoint, line)
}

func newRootResolveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "root <file>",
		Short: "Print the project root used as a file's working directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newScanner(e.cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			rep, _, err := s.detectFile(args[0])
			if err != nil {
				return err
			}
			out := struct {
				File    string `json:"file" yaml:"file"`
				Root    string `json:"root" yaml:"root"`
				Project string `json:"cargoPackage,omitempty" yaml:"cargoPackage,omitempty"`
			}{File: rep.Path, Root: rep.Root, Project: project.CargoPackageName(rep.Root)}
			return render(cmd.OutOrStdout(), e.output, out, func() string {
				return out.Root + "\n"
			})
		},
	}
}
