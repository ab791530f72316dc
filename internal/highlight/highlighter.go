package highlight

import (
	"context"
	"fmt"
	"sync/atomic"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// Analysis is everything derived from one parse of a document.
type Analysis struct {
	Lexical  Result
	Semantic Result
	Merged   Result
	Symbols  *Index
}

// Highlighter parses documents with tree-sitter. It is safe for concurrent
// use; each parse gets its own parser.
type Highlighter struct {
	parses atomic.Int64
}

// NewHighlighter creates a highlighter.
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Parses reports how many documents have been parsed.
func (h *Highlighter) Parses() int64 {
	return h.parses.Load()
}

// Supports reports whether a grammar is bundled for l.
func Supports(l lang.Language) bool {
	return lang.Grammar(l) != nil
}

// Parse returns the syntax tree for src. The caller closes the tree.
// Languages without a grammar return a nil tree and no error.
func (h *Highlighter) Parse(ctx context.Context, src []byte, l lang.Language) (*sitter.Tree, error) {
	grammar := lang.Grammar(l)
	if grammar == nil {
		return nil, nil
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)
	h.parses.Add(1)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", l, err)
	}
	return tree, nil
}

// Analyze tokenizes src. With semantic set, identifier tokens are refined by
// declaration analysis and merged over the lexical tokens.
func (h *Highlighter) Analyze(ctx context.Context, src []byte, l lang.Language, semantic bool) (*Analysis, error) {
	tree, err := h.Parse(ctx, src, l)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		logger.DebugTagf("highlight", "no grammar for %s, skipping", l)
		return &Analysis{Lexical: Result{}, Merged: Result{}, Symbols: &Index{Declarations: map[string][]Symbol{}}}, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	a := &Analysis{
		Lexical: lexicalTokens(root, newLineIndex(src)),
		Symbols: BuildIndex(root, src),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if semantic {
		a.Semantic = semanticTokens(a.Symbols)
		a.Merged = MergeResults(a.Lexical, a.Semantic)
	} else {
		a.Merged = a.Lexical
	}
	return a, nil
}

// Highlight returns the merged per-line tokens for src.
func (h *Highlighter) Highlight(ctx context.Context, src []byte, l lang.Language, semantic bool) (Result, error) {
	a, err := h.Analyze(ctx, src, l, semantic)
	if err != nil {
		return nil, err
	}
	return a.Merged, nil
}
