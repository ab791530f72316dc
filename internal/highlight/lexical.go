package highlight

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// lineIndex converts tree-sitter points into per-line character columns.
type lineIndex struct {
	lines [][]byte
}

func newLineIndex(src []byte) lineIndex {
	return lineIndex{lines: bytes.Split(src, []byte("\n"))}
}

func (li lineIndex) col(row, byteCol uint32) int {
	if int(row) >= len(li.lines) {
		return 0
	}
	line := li.lines[row]
	b := int(byteCol)
	if b > len(line) {
		b = len(line)
	}
	return utf8.RuneCount(line[:b])
}

// span adds tk to every line the [start, end) range touches.
func (li lineIndex) span(r Result, start, end sitter.Point, tk Token) {
	for row := start.Row; row <= end.Row && int(row) < len(li.lines); row++ {
		startByte := uint32(0)
		if row == start.Row {
			startByte = start.Column
		}
		endByte := uint32(len(li.lines[row]))
		if row == end.Row && end.Column < endByte {
			endByte = end.Column
		}
		tk.Start = li.col(row, startByte)
		tk.End = li.col(row, endByte)
		if tk.End > tk.Start {
			r[int(row)] = append(r[int(row)], tk)
		}
	}
}

var typeNodes = map[string]bool{
	"type_identifier":      true,
	"primitive_type":       true,
	"builtin_type":         true,
	"integral_type":        true,
	"floating_point_type":  true,
	"boolean_type":         true,
	"void_type":            true,
	"sized_type_specifier": true,
	"predefined_type":      true,
}

var constantNodes = map[string]bool{
	"true":            true,
	"false":           true,
	"nil":             true,
	"null":            true,
	"none":            true,
	"iota":            true,
	"undefined":       true,
	"null_literal":    true,
	"boolean_literal": true,
	"boolean":         true,
}

var stringNodes = map[string]bool{
	"char_literal":      true,
	"character_literal": true,
	"rune_literal":      true,
	"template_string":   true,
	"heredoc_body":      true,
	"escape_sequence":   true,
}

var numberMarkers = []string{"integer", "float", "number", "int_literal", "imaginary_literal", "decimal", "hex_literal"}

// classify returns the lexical type of a node and whether its subtree is
// rendered as a single token.
func classify(n *sitter.Node) (string, bool) {
	t := n.Type()
	if !n.IsNamed() {
		return classifyAnonymous(t), true
	}
	switch {
	case strings.Contains(t, "comment"):
		return TypeComment, true
	case stringNodes[t] || strings.Contains(t, "string"):
		return TypeString, true
	case typeNodes[t]:
		return TypeType, true
	case constantNodes[t]:
		return TypeConstant, true
	}
	for _, m := range numberMarkers {
		if strings.Contains(t, m) && !strings.HasSuffix(t, "_type") {
			return TypeNumber, true
		}
	}
	if n.ChildCount() == 0 && strings.HasSuffix(t, "identifier") {
		return TypeIdentifier, true
	}
	return "", false
}

func classifyAnonymous(t string) string {
	if t == "" {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(t)
	switch {
	case unicode.IsLetter(first) || first == '_' || first == '@' || first == '#':
		if strings.TrimLeftFunc(t, isWordRune) == "" {
			return TypeKeyword
		}
	case t == `"` || t == "'" || t == "`" || t == `"""`:
		return TypeString
	}
	if strings.Trim(t, "(){}[],;.:") == "" {
		return TypePunctuation
	}
	if strings.TrimSpace(t) == "" {
		return ""
	}
	return TypeOperator
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '@' || r == '#' || r == '!'
}

// lexicalTokens tags the leaves of the syntax tree.
func lexicalTokens(root *sitter.Node, li lineIndex) Result {
	res := make(Result)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		typ, atomic := classify(n)
		if atomic || n.ChildCount() == 0 {
			if typ != "" {
				li.span(res, n.StartPoint(), n.EndPoint(), Token{Type: typ})
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c != nil {
				walk(c)
			}
		}
	}
	walk(root)
	sortLines(res)
	return res
}
