package runcmd

import (
	"strings"
	"testing"
)

// posixUnquote undoes single-quote shell quoting: quoted spans are literal,
// and \' outside quotes is a literal quote.
func posixUnquote(t *testing.T, s string) string {
	t.Helper()
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\'':
			inQuote = false
		case inQuote:
			b.WriteByte(c)
		case c == '\'':
			inQuote = true
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		default:
			t.Fatalf("unquoted byte %q at %d in %s", c, i, s)
		}
	}
	if inQuote {
		t.Fatalf("unterminated quote in %s", s)
	}
	return b.String()
}

func TestShellEscape(t *testing.T) {
	if got := ShellEscape("it's"); got != `'it'\''s'` {
		t.Errorf("ShellEscape(it's) = %s", got)
	}

	inputs := []string{
		"",
		"plain",
		"with space",
		"it's",
		"''",
		"$(rm -rf /)",
		"`whoami`; echo pwned",
		"a\"b\\c",
		"new\nline",
	}
	for _, in := range inputs {
		out := ShellEscape(in)
		if !strings.HasPrefix(out, "'") || !strings.HasSuffix(out, "'") {
			t.Errorf("ShellEscape(%q) = %s, not single-quoted", in, out)
		}
		if back := posixUnquote(t, out); back != in {
			t.Errorf("round trip of %q gave %q", in, back)
		}
	}
}
