package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/highlight"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

type tokenReport struct {
	Start     int      `json:"start" yaml:"start"`
	End       int      `json:"end" yaml:"end"`
	Type      string   `json:"type" yaml:"type"`
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Text      string   `json:"text" yaml:"text"`
}

type lineReport struct {
	// Line is 1-based.
	Line   int           `json:"line" yaml:"line"`
	Tokens []tokenReport `json:"tokens" yaml:"tokens"`
}

func newTokensCommand(e *env) *cobra.Command {
	var (
		line    int
		lexical bool
	)
	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the highlighting tokens of a file",
		Long: `Tokens parses a file with its tree-sitter grammar and prints the
highlighting spans per line. Columns are 0-based character offsets and End is
exclusive. Semantic tokens are merged in unless --lexical is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			st, _ := settings.Load(e.cfg.SettingsPath())
			src, err := host.NewLocalContent(st.MaxFileSizeBytes).Read(path)
			if err != nil {
				return err
			}
			l := lang.Detect(path, []byte(src))
			if !highlight.Supports(l) {
				return fmt.Errorf("no grammar for %s (%s)", path, l)
			}
			res, err := highlight.NewHighlighter().Highlight(cmd.Context(), []byte(src), l, !lexical && st.SemanticHighlighting)
			if err != nil {
				return err
			}

			lines := tokenLines(src, res, line)
			return render(cmd.OutOrStdout(), e.output, lines, func() string {
				return renderTokens(lines)
			})
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 0, "only show this 1-based line")
	cmd.Flags().BoolVar(&lexical, "lexical", false, "skip semantic analysis")
	return cmd
}

// tokenLines flattens res in line order, attaching the covered text. only
// selects a single 1-based line when positive.
func tokenLines(src string, res highlight.Result, only int) []lineReport {
	text := strings.Split(src, "\n")
	rows := make([]int, 0, len(res))
	for row := range res {
		if only > 0 && row != only-1 {
			continue
		}
		rows = append(rows, row)
	}
	sort.Ints(rows)

	out := make([]lineReport, 0, len(rows))
	for _, row := range rows {
		var runes []rune
		if row < len(text) {
			runes = []rune(text[row])
		}
		lr := lineReport{Line: row + 1}
		for _, tk := range res[row] {
			tr := tokenReport{Start: tk.Start, End: tk.End, Type: tk.Type, Modifiers: tk.Modifiers}
			if tk.Start >= 0 && tk.End <= len(runes) && tk.Start < tk.End {
				tr.Text = string(runes[tk.Start:tk.End])
			}
			lr.Tokens = append(lr.Tokens, tr)
		}
		out = append(out, lr)
	}
	return out
}

func renderTokens(lines []lineReport) string {
	var b strings.Builder
	for _, lr := range lines {
		fmt.Fprintf(&b, "%s\n", headingStyle.Render(fmt.Sprintf("%d", lr.Line)))
		for _, tk := range lr.Tokens {
			style := tk.Type
			if len(tk.Modifiers) > 0 {
				style += "." + strings.Join(tk.Modifiers, ".")
			}
			fmt.Fprintf(&b, "  %3d-%-3d %-24s %s\n", tk.Start, tk.End, labelStyle.Render(style), tk.Text)
		}
	}
	return b.String()
}
