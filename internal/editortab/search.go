package editortab

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"unicode/utf8"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/buffer"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// ErrNoSearch is returned by navigation and replace before a successful Find.
var ErrNoSearch = errors.New("no active search")

// SearchOptions control how a query matches.
type SearchOptions struct {
	Regex     bool `json:"regex" yaml:"regex"`
	MatchCase bool `json:"matchCase" yaml:"matchCase"`
	WholeWord bool `json:"wholeWord" yaml:"wholeWord"`
}

// Match is one occurrence of the query, within a single line.
type Match struct {
	Start buffer.Position `json:"start" yaml:"start"`
	End   buffer.Position `json:"end" yaml:"end"`
}

// compilePattern builds the regexp for a query.
func compilePattern(query string, opts SearchOptions) (*regexp.Regexp, error) {
	if query == "" {
		return nil, errors.New("search pattern cannot be empty")
	}
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(query)
	}
	if opts.WholeWord {
		pattern = `\b(?:` + pattern + `)\b`
	}
	if !opts.MatchCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern: %w", err)
	}
	return re, nil
}

// Search finds and replaces text in a buffer. Matches never span lines.
type Search struct {
	mu      sync.RWMutex
	buf     buffer.Buffer
	query   string
	opts    SearchOptions
	re      *regexp.Regexp
	matches []Match
	current int
}

// NewSearch creates a search over buf.
func NewSearch(buf buffer.Buffer) *Search {
	return &Search{buf: buf, current: -1}
}

// Find compiles the query and collects every match. It returns the count.
func (s *Search) Find(query string, opts SearchOptions) (int, error) {
	re, err := compilePattern(query, opts)
	if err != nil {
		s.Clear()
		logger.Warnf("search: invalid pattern %q: %v", query, err)
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query, s.opts, s.re = query, opts, re
	s.refreshLocked()
	logger.DebugTagf("search", "%d match(es) for %q", len(s.matches), query)
	return len(s.matches), nil
}

func (s *Search) refreshLocked() {
	s.matches = s.matches[:0]
	s.current = -1
	if s.re == nil {
		return
	}
	for lineIdx, line := range s.buf.Lines() {
		for _, loc := range s.re.FindAllIndex(line, -1) {
			if loc[0] == loc[1] {
				continue
			}
			s.matches = append(s.matches, Match{
				Start: buffer.Position{Line: lineIdx, Col: byteOffsetToRuneIndex(line, loc[0])},
				End:   buffer.Position{Line: lineIdx, Col: byteOffsetToRuneIndex(line, loc[1])},
			})
		}
	}
}

// Refresh re-runs the active query after the buffer changed.
func (s *Search) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
}

// Clear drops the active query.
func (s *Search) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query, s.re, s.matches, s.current = "", nil, nil, -1
}

// Query returns the active query and options.
func (s *Search) Query() (string, SearchOptions) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query, s.opts
}

// Matches returns a copy of the current matches.
func (s *Search) Matches() []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out
}

// Current returns the selected match, if any.
func (s *Search) Current() (Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 || s.current >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.current], true
}

// Next selects the first match starting after from, wrapping to the top.
func (s *Search) Next(from buffer.Position) (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.current = 0
	for i, m := range s.matches {
		if from.Before(m.Start) {
			s.current = i
			break
		}
	}
	return s.matches[s.current], true
}

// Prev selects the last match starting before from, wrapping to the bottom.
func (s *Search) Prev(from buffer.Position) (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return Match{}, false
	}
	s.current = len(s.matches) - 1
	for i := len(s.matches) - 1; i >= 0; i-- {
		if s.matches[i].Start.Before(from) {
			s.current = i
			break
		}
	}
	return s.matches[s.current], true
}

// expand computes the replacement text for the match starting at byte start
// of line. Regex queries expand $1-style group references.
func (s *Search) expand(line []byte, start int, replacement string) []byte {
	if !s.opts.Regex {
		return []byte(replacement)
	}
	for _, loc := range s.re.FindAllSubmatchIndex(line, -1) {
		if loc[0] == start {
			return s.re.Expand(nil, []byte(replacement), line, loc)
		}
	}
	return []byte(replacement)
}

// ReplaceCurrent replaces the selected match and selects the next one.
func (s *Search) ReplaceCurrent(replacement string) (buffer.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.re == nil {
		return buffer.Position{}, ErrNoSearch
	}
	if s.current < 0 || s.current >= len(s.matches) {
		return buffer.Position{}, errors.New("no match selected")
	}
	m := s.matches[s.current]
	line, err := s.buf.Line(m.Start.Line)
	if err != nil {
		return buffer.Position{}, fmt.Errorf("replace: %w", err)
	}
	text := s.expand(line, runeIndexToByteOffset(line, m.Start.Col), replacement)
	end, err := s.buf.Replace(m.Start, m.End, text)
	if err != nil {
		return buffer.Position{}, fmt.Errorf("replace: %w", err)
	}
	s.refreshLocked()
	for i, next := range s.matches {
		if !next.Start.Before(end) {
			s.current = i
			break
		}
	}
	return end, nil
}

// ReplaceAll replaces every match and returns how many were replaced.
func (s *Search) ReplaceAll(replacement string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.re == nil {
		return 0, ErrNoSearch
	}
	count := 0
	// last to first, so earlier positions stay valid
	for i := len(s.matches) - 1; i >= 0; i-- {
		m := s.matches[i]
		line, err := s.buf.Line(m.Start.Line)
		if err != nil {
			return count, fmt.Errorf("replace all: %w", err)
		}
		text := s.expand(line, runeIndexToByteOffset(line, m.Start.Col), replacement)
		if _, err := s.buf.Replace(m.Start, m.End, text); err != nil {
			return count, fmt.Errorf("replace all: %w", err)
		}
		count++
	}
	s.refreshLocked()
	logger.Debugf("search: replaced %d occurrence(s) of %q", count, s.query)
	return count, nil
}

func runeIndexToByteOffset(line []byte, runeIndex int) int {
	off := 0
	for i := 0; i < runeIndex && off < len(line); i++ {
		_, size := utf8.DecodeRune(line[off:])
		off += size
	}
	return off
}

func byteOffsetToRuneIndex(line []byte, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset >= len(line) {
		return utf8.RuneCount(line)
	}
	return utf8.RuneCount(line[:byteOffset])
}
