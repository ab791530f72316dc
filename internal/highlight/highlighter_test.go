package highlight

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
)

const goSample = `package main

func add(a int, b int) int {
	return a + b
}

func main() {
	// sum
	x := add(1, 2)
	s := "hi"
	_, _ = x, s
}
`

func findToken(tokens []Token, start int) (Token, bool) {
	for _, tk := range tokens {
		if tk.Start == start {
			return tk, true
		}
	}
	return Token{}, false
}

func TestAnalyzeLexical(t *testing.T) {
	h := NewHighlighter()
	a, err := h.Analyze(context.Background(), []byte(goSample), lang.Go, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	tests := []struct {
		line, start int
		want        string
	}{
		{0, 0, TypeKeyword},
		{2, 0, TypeKeyword},
		{2, 11, TypeType},
		{7, 1, TypeComment},
		{8, 10, TypeNumber},
		{9, 6, TypeString},
	}
	for _, tt := range tests {
		tk, ok := findToken(a.Lexical[tt.line], tt.start)
		if !ok {
			t.Errorf("line %d: no token at %d in %v", tt.line, tt.start, a.Lexical[tt.line])
			continue
		}
		if tk.Type != tt.want {
			t.Errorf("line %d col %d: type = %q, want %q", tt.line, tt.start, tk.Type, tt.want)
		}
	}
	if a.Semantic != nil {
		t.Errorf("semantic tokens produced with semantic disabled")
	}
}

func TestAnalyzeSemantic(t *testing.T) {
	h := NewHighlighter()
	a, err := h.Analyze(context.Background(), []byte(goSample), lang.Go, true)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	decl, ok := findToken(a.Merged[2], 5)
	if !ok || decl.End != 8 || decl.Style() != "function.declaration" {
		t.Errorf("add declaration token = %+v (found %v)", decl, ok)
	}
	call, ok := findToken(a.Merged[8], 6)
	if !ok || call.Style() != TypeFunction {
		t.Errorf("add call token = %+v (found %v)", call, ok)
	}
	param, ok := findToken(a.Merged[3], 8)
	if !ok || param.Type != TypeParameter {
		t.Errorf("parameter reference token = %+v (found %v)", param, ok)
	}
	// keywords survive the overlay
	if kw, ok := findToken(a.Merged[2], 0); !ok || kw.Type != TypeKeyword {
		t.Errorf("func keyword token = %+v (found %v)", kw, ok)
	}
}

func TestIndexNavigation(t *testing.T) {
	h := NewHighlighter()
	a, err := h.Analyze(context.Background(), []byte(goSample), lang.Go, true)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	d, ok := a.Symbols.DeclarationOf("add")
	if !ok || d.Line != 2 || d.Col != 5 || d.Kind != TypeFunction {
		t.Errorf("DeclarationOf(add) = %+v, %v", d, ok)
	}
	if refs := a.Symbols.References("add"); len(refs) != 2 {
		t.Errorf("References(add) = %d occurrences, want 2", len(refs))
	}
	if refs := a.Symbols.References("x"); len(refs) != 2 {
		t.Errorf("References(x) = %d occurrences, want 2", len(refs))
	}
	s, ok := a.Symbols.At(8, 7)
	if !ok || s.Name != "add" {
		t.Errorf("At(8, 7) = %+v, %v", s, ok)
	}
	if _, ok := a.Symbols.At(1, 0); ok {
		t.Errorf("At() on a blank line found a symbol")
	}
}

func TestAnalyzeWithoutGrammar(t *testing.T) {
	h := NewHighlighter()
	res, err := h.Highlight(context.Background(), []byte("anything"), lang.Unknown, true)
	if err != nil {
		t.Fatalf("Highlight() error = %v", err)
	}
	if len(res) != 0 {
		t.Errorf("Highlight() = %v, want empty", res)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	h := NewHighlighter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Analyze(ctx, []byte(goSample), lang.Go, true); err == nil {
		t.Errorf("Analyze() with cancelled context succeeded")
	}
}

func TestManagerDebounces(t *testing.T) {
	var mu sync.Mutex
	src := "package main\n"
	results := make(chan *Analysis, 4)

	m := NewManager(NewHighlighter(), 20*time.Millisecond,
		func() Snapshot {
			mu.Lock()
			defer mu.Unlock()
			return Snapshot{Source: []byte(src), Language: lang.Go, Semantic: true}
		},
		func(a *Analysis) { results <- a },
	)
	defer m.Shutdown()

	for _, s := range []string{"package a\n", "package b\n", goSample} {
		mu.Lock()
		src = s
		mu.Unlock()
		m.Request()
	}

	select {
	case a := <-results:
		if _, ok := a.Symbols.DeclarationOf("add"); !ok {
			t.Errorf("analysis ran over a stale snapshot")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no analysis applied")
	}
}

func TestManagerShutdownCancelsPending(t *testing.T) {
	applied := make(chan struct{}, 1)
	m := NewManager(NewHighlighter(), 30*time.Millisecond,
		func() Snapshot { return Snapshot{Source: []byte(goSample), Language: lang.Go} },
		func(*Analysis) { applied <- struct{}{} },
	)
	m.Request()
	m.Shutdown()
	m.Request()

	select {
	case <-applied:
		t.Error("analysis applied after Shutdown")
	case <-time.After(150 * time.Millisecond):
	}
}
