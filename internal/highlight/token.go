// Package highlight produces per-line highlighting tokens for editor content.
package highlight

import "slices"

// Token types shared by the tokenizers and the themes.
const (
	TypeKeyword     = "keyword"
	TypeString      = "string"
	TypeNumber      = "number"
	TypeComment     = "comment"
	TypeOperator    = "operator"
	TypePunctuation = "punctuation"
	TypeIdentifier  = "identifier"
	TypeType        = "type"
	TypeConstant    = "constant"
	TypeFunction    = "function"
	TypeParameter   = "parameter"
	TypeVariable    = "variable"
	TypeProperty    = "property"
	TypeNamespace   = "namespace"

	ModDeclaration = "declaration"
)

// Token is a half-open [Start, End) column span on a single line.
// Columns count characters, not bytes.
type Token struct {
	Start     int      `json:"start" yaml:"start"`
	End       int      `json:"end" yaml:"end"`
	Type      string   `json:"type" yaml:"type"`
	Modifiers []string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// Style is the theme key for the token: "type" or "type.modifier".
func (t Token) Style() string {
	if len(t.Modifiers) == 0 {
		return t.Type
	}
	return t.Type + "." + t.Modifiers[0]
}

// Result maps a 0-based line number to its sorted tokens.
type Result map[int][]Token

// Merge overlays one token list onto another. Both inputs must be sorted by
// Start with no overlaps inside a list. Where an overlay token covers part of
// a base token the overlay wins and the base token is clipped, its uncovered
// fragments keeping their original type. The lists are swept once, left to
// right.
func Merge(base, overlay []Token) []Token {
	if len(overlay) == 0 {
		return base
	}
	if len(base) == 0 {
		return overlay
	}

	out := make([]Token, 0, len(base)+len(overlay))
	i, j := 0, 0
	// covered is the end of the last overlay emitted; base text before it is gone.
	covered := min(base[0].Start, overlay[0].Start)
	var cur Token
	have := false

	for {
		if !have && i < len(base) {
			cur = base[i]
			i++
			if cur.Start < covered {
				cur.Start = covered
			}
			if cur.Start >= cur.End {
				continue
			}
			have = true
		}
		if !have && j >= len(overlay) {
			break
		}

		if have && (j >= len(overlay) || cur.Start < overlay[j].Start) {
			end := cur.End
			if j < len(overlay) && overlay[j].Start < end {
				end = overlay[j].Start
			}
			frag := cur
			frag.End = end
			out = append(out, frag)
			if end == cur.End {
				have = false
			} else {
				cur.Start = end
			}
			continue
		}

		ov := overlay[j]
		j++
		out = append(out, ov)
		if ov.End > covered {
			covered = ov.End
		}
		if have && cur.Start < covered {
			cur.Start = covered
			if cur.Start >= cur.End {
				have = false
			}
		}
	}
	return out
}

// MergeResults merges two whole-document results line by line.
func MergeResults(base, overlay Result) Result {
	if len(overlay) == 0 {
		return base
	}
	out := make(Result, len(base)+len(overlay))
	for line, toks := range base {
		out[line] = Merge(toks, overlay[line])
	}
	for line, toks := range overlay {
		if _, done := out[line]; !done {
			out[line] = toks
		}
	}
	return out
}

func sortLines(r Result) {
	for line, toks := range r {
		slices.SortStableFunc(toks, func(a, b Token) int { return a.Start - b.Start })
		r[line] = toks
	}
}
