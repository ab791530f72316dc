package editortab

import (
	"errors"
	"testing"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/buffer"
)

const searchText = "foo bar Foo\nfood foo\nbär foo"

func TestSearchFind(t *testing.T) {
	tests := []struct {
		name  string
		query string
		opts  SearchOptions
		want  int
	}{
		{"ignore case", "foo", SearchOptions{}, 5},
		{"match case", "foo", SearchOptions{MatchCase: true}, 4},
		{"whole word", "foo", SearchOptions{WholeWord: true}, 4},
		{"literal dot", "o.", SearchOptions{}, 0},
		{"regex", `f\w+d`, SearchOptions{Regex: true}, 1},
	}
	for _, tt := range tests {
		s := NewSearch(buffer.NewSliceBuffer([]byte(searchText)))
		got, err := s.Find(tt.query, tt.opts)
		if err != nil {
			t.Fatalf("%s: Find() error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: Find() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSearchColumnsAreRunes(t *testing.T) {
	s := NewSearch(buffer.NewSliceBuffer([]byte(searchText)))
	if _, err := s.Find("foo", SearchOptions{MatchCase: true}); err != nil {
		t.Fatal(err)
	}
	ms := s.Matches()
	last := ms[len(ms)-1]
	want := Match{Start: buffer.Position{Line: 2, Col: 4}, End: buffer.Position{Line: 2, Col: 7}}
	if last != want {
		t.Errorf("last match = %+v, want %+v", last, want)
	}
}

func TestSearchInvalidPattern(t *testing.T) {
	s := NewSearch(buffer.NewSliceBuffer([]byte(searchText)))
	if _, err := s.Find("(", SearchOptions{Regex: true}); err == nil {
		t.Error("invalid regex accepted")
	}
	if _, err := s.Find("", SearchOptions{}); err == nil {
		t.Error("empty query accepted")
	}
	if _, err := s.ReplaceAll("x"); !errors.Is(err, ErrNoSearch) {
		t.Errorf("ReplaceAll() without search error = %v, want ErrNoSearch", err)
	}
}

func TestSearchNextPrevWrap(t *testing.T) {
	s := NewSearch(buffer.NewSliceBuffer([]byte(searchText)))
	if _, err := s.Find("foo", SearchOptions{MatchCase: true, WholeWord: true}); err != nil {
		t.Fatal(err)
	}
	m, ok := s.Next(buffer.Position{Line: 1, Col: 0})
	if !ok || m.Start != (buffer.Position{Line: 1, Col: 5}) {
		t.Errorf("Next() = %+v, %v", m, ok)
	}
	m, _ = s.Next(buffer.Position{Line: 2, Col: 4})
	if m.Start != (buffer.Position{Line: 0, Col: 0}) {
		t.Errorf("Next() past the end = %+v, want wrap to first", m)
	}
	m, _ = s.Prev(buffer.Position{Line: 0, Col: 0})
	if m.Start != (buffer.Position{Line: 2, Col: 4}) {
		t.Errorf("Prev() before the start = %+v, want wrap to last", m)
	}
}

func TestSearchReplace(t *testing.T) {
	buf := buffer.NewSliceBuffer([]byte("let a = 1\nlet b = 2"))
	s := NewSearch(buf)
	if _, err := s.Find(`let (\w)`, SearchOptions{Regex: true}); err != nil {
		t.Fatal(err)
	}
	s.Next(buffer.Position{})
	s.Prev(buffer.Position{Line: 0, Col: 1})
	if _, err := s.ReplaceCurrent("const $1"); err != nil {
		t.Fatalf("ReplaceCurrent() error = %v", err)
	}
	if got := string(buf.Bytes()); got != "const a = 1\nlet b = 2" {
		t.Errorf("after ReplaceCurrent: %q", got)
	}
	if len(s.Matches()) != 1 {
		t.Errorf("matches after replace = %d, want 1", len(s.Matches()))
	}

	n, err := s.ReplaceAll("var $1")
	if err != nil || n != 1 {
		t.Fatalf("ReplaceAll() = %d, %v", n, err)
	}
	if got := string(buf.Bytes()); got != "const a = 1\nvar b = 2" {
		t.Errorf("after ReplaceAll: %q", got)
	}
}

func TestSearchReplaceAllSameLine(t *testing.T) {
	buf := buffer.NewSliceBuffer([]byte("aa aa aa"))
	s := NewSearch(buf)
	if _, err := s.Find("aa", SearchOptions{}); err != nil {
		t.Fatal(err)
	}
	n, err := s.ReplaceAll("b")
	if err != nil || n != 3 {
		t.Fatalf("ReplaceAll() = %d, %v", n, err)
	}
	if got := string(buf.Bytes()); got != "b b b" {
		t.Errorf("got %q", got)
	}
	if !buf.IsModified() {
		t.Error("buffer not marked modified")
	}
}
