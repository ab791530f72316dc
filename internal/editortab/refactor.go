package editortab

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/highlight"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

var (
	// ErrInvalidIdentifier is returned when a rename target is not a legal name.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNoSymbol is returned when no identifier sits at the requested position.
	ErrNoSymbol = errors.New("no symbol at position")
	// ErrNoDeclaration is returned when a symbol has no declaration in the file.
	ErrNoDeclaration = errors.New("declaration not found")
)

var identifierPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

var reservedWords = map[string]bool{}

func init() {
	for _, w := range []string{
		// shared
		"if", "else", "for", "while", "do", "switch", "case", "default", "break",
		"continue", "return", "goto", "true", "false", "null", "nil", "None",
		"True", "False", "class", "struct", "enum", "interface", "import", "package",
		"const", "var", "let", "fn", "func", "fun", "def", "static", "public",
		"private", "protected", "new", "this", "self", "super", "try", "catch",
		"finally", "throw", "throws", "in", "is", "as", "not", "and", "or",
		"void", "int", "char", "float", "double", "long", "short", "unsigned",
		// go
		"chan", "defer", "go", "map", "range", "select", "type", "fallthrough",
		// rust
		"impl", "trait", "mut", "match", "loop", "mod", "pub", "use", "where", "crate", "unsafe",
		// python and ruby
		"elif", "lambda", "pass", "yield", "with", "from", "global", "end", "begin", "module",
		// jvm and js
		"object", "val", "when", "extends", "implements", "function", "typeof", "instanceof",
	} {
		reservedWords[w] = true
	}
}

// ValidIdentifier reports whether name can replace an identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name) && !reservedWords[name]
}

// analysisSnapshot parses the current content synchronously.
// It also returns the document version the analysis belongs to.
func (c *Component) analysisSnapshot(ctx context.Context) (*highlight.Analysis, uint64, error) {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return nil, 0, err
	}
	src := c.buf.Bytes()
	l := c.language
	version := c.version
	c.mu.Unlock()
	if !highlight.Supports(l) {
		return nil, version, fmt.Errorf("%w: no syntax tree for %s files", ErrNoSymbol, l)
	}
	a, err := c.highlighter.Analyze(ctx, src, l, true)
	return a, version, err
}

// Rename replaces every occurrence of the identifier at (line, col) with
// newName and returns how many were changed.
func (c *Component) Rename(ctx context.Context, line, col int, newName string) (int, error) {
	n, err := c.rename(ctx, line, col, newName)
	if err != nil {
		c.fail("Rename failed", err)
	}
	return n, err
}

func (c *Component) rename(ctx context.Context, line, col int, newName string) (int, error) {
	if !ValidIdentifier(newName) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, newName)
	}
	a, version, err := c.analysisSnapshot(ctx)
	if err != nil {
		return 0, err
	}
	sym, ok := a.Symbols.At(line, col)
	if !ok {
		return 0, ErrNoSymbol
	}
	if sym.Name == newName {
		return 0, nil
	}
	refs := a.Symbols.References(sym.Name)
	sort.Slice(refs, func(i, j int) bool { return refs[i].StartByte > refs[j].StartByte })

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	if c.version != version {
		c.mu.Unlock()
		return 0, errors.New("document changed during rename")
	}
	for _, r := range refs {
		start := c.buf.PositionAt(int(r.StartByte))
		end := c.buf.PositionAt(int(r.EndByte))
		if _, err := c.buf.Replace(start, end, []byte(newName)); err != nil {
			c.mu.Unlock()
			return 0, fmt.Errorf("rename %s: %w", sym.Name, err)
		}
	}
	c.version++
	c.mu.Unlock()

	logger.Infof("renamed %s to %s (%d occurrences)", sym.Name, newName, len(refs))
	c.contentChanged()
	c.notify(plugin.LevelInfo, fmt.Sprintf("Renamed %d occurrence(s) of %s", len(refs), sym.Name))
	return len(refs), nil
}

// GoToDeclaration finds the declaration of the identifier at (line, col) and
// opens it through the host navigator, or moves the cursor when the host
// has none.
func (c *Component) GoToDeclaration(ctx context.Context, line, col int) (highlight.Symbol, error) {
	sym, err := c.goToDeclaration(ctx, line, col)
	if err != nil {
		c.fail("Go to declaration failed", err)
	}
	return sym, err
}

func (c *Component) goToDeclaration(ctx context.Context, line, col int) (highlight.Symbol, error) {
	a, _, err := c.analysisSnapshot(ctx)
	if err != nil {
		return highlight.Symbol{}, err
	}
	sym, ok := a.Symbols.At(line, col)
	if !ok {
		return highlight.Symbol{}, ErrNoSymbol
	}
	decl, ok := a.Symbols.DeclarationOf(sym.Name)
	if !ok {
		return highlight.Symbol{}, fmt.Errorf("%w: %s", ErrNoDeclaration, sym.Name)
	}

	path := c.Data().FilePath
	if nav := c.pctx.Navigator; nav != nil && path != "" {
		if err := nav.Open(path, decl.Line, decl.Col); err != nil {
			return decl, fmt.Errorf("open declaration of %s: %w", sym.Name, err)
		}
	}
	c.SetCursor(decl.Line, decl.Col)
	return decl, nil
}
