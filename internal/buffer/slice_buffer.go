package buffer

import (
	"bytes"
	"fmt"
	"sync"
	"unicode/utf8"
)

// SliceBuffer stores the document as a slice of lines without their
// terminators. It is safe for concurrent use.
type SliceBuffer struct {
	mu       sync.RWMutex
	lines    [][]byte
	modified bool
}

// NewSliceBuffer creates a buffer holding content, unmodified.
func NewSliceBuffer(content []byte) *SliceBuffer {
	sb := &SliceBuffer{}
	sb.lines = splitLines(content)
	return sb
}

func splitLines(content []byte) [][]byte {
	parts := bytes.Split(content, []byte("\n"))
	lines := make([][]byte, len(parts))
	for i, p := range parts {
		lines[i] = append([]byte(nil), p...)
	}
	return lines
}

// SetBytes replaces the whole document and clears the modified flag.
func (sb *SliceBuffer) SetBytes(content []byte) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.lines = splitLines(content)
	sb.modified = false
}

// Lines returns a copy of the line slice; the line contents are shared.
func (sb *SliceBuffer) Lines() [][]byte {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	out := make([][]byte, len(sb.lines))
	copy(out, sb.lines)
	return out
}

func (sb *SliceBuffer) LineCount() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return len(sb.lines)
}

func (sb *SliceBuffer) Line(index int) ([]byte, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	if index < 0 || index >= len(sb.lines) {
		return nil, fmt.Errorf("line index %d out of bounds (0-%d)", index, len(sb.lines)-1)
	}
	return sb.lines[index], nil
}

// Bytes joins the lines with '\n'.
func (sb *SliceBuffer) Bytes() []byte {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return bytes.Join(sb.lines, []byte("\n"))
}

func (sb *SliceBuffer) IsModified() bool {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.modified
}

// MarkSaved clears the modified flag after the content reached storage.
func (sb *SliceBuffer) MarkSaved() {
	sb.mu.Lock()
	sb.modified = false
	sb.mu.Unlock()
}

// Offset converts pos to a byte offset into Bytes(). Out of range positions
// are clamped.
func (sb *SliceBuffer) Offset(pos Position) int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	vp, byteOff := sb.validatePosition(pos)
	off := 0
	for i := 0; i < vp.Line; i++ {
		off += len(sb.lines[i]) + 1
	}
	return off + byteOff
}

// PositionAt converts a byte offset into Bytes() to a position.
func (sb *SliceBuffer) PositionAt(offset int) Position {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	for i, line := range sb.lines {
		if offset <= len(line) {
			return Position{Line: i, Col: utf8.RuneCount(line[:offset])}
		}
		offset -= len(line) + 1
	}
	last := len(sb.lines) - 1
	return Position{Line: last, Col: utf8.RuneCount(sb.lines[last])}
}

// validatePositionOnLine returns the clamped column and its byte offset on a line.
func (sb *SliceBuffer) validatePositionOnLine(col int, lineIndex int) (int, int) {
	line := sb.lines[lineIndex]
	if col < 0 {
		col = 0
	}
	byteOff := 0
	runes := 0
	for byteOff < len(line) && runes < col {
		_, size := utf8.DecodeRune(line[byteOff:])
		byteOff += size
		runes++
	}
	return runes, byteOff
}

func (sb *SliceBuffer) validatePosition(pos Position) (Position, int) {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(sb.lines) {
		pos.Line = len(sb.lines) - 1
	}
	col, byteOff := sb.validatePositionOnLine(pos.Col, pos.Line)
	return Position{Line: pos.Line, Col: col}, byteOff
}

// Insert places text at pos and returns the position just past it.
func (sb *SliceBuffer) Insert(pos Position, text []byte) (Position, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.insertLocked(pos, text), nil
}

func (sb *SliceBuffer) insertLocked(pos Position, text []byte) Position {
	vp, byteOffset := sb.validatePosition(pos)
	if len(text) == 0 {
		return vp
	}
	sb.modified = true

	current := sb.lines[vp.Line]
	tail := append([]byte(nil), current[byteOffset:]...)
	inserted := bytes.Split(text, []byte("\n"))

	head := append(current[:byteOffset:byteOffset], inserted[0]...)
	if len(inserted) == 1 {
		sb.lines[vp.Line] = append(head, tail...)
		return Position{Line: vp.Line, Col: vp.Col + utf8.RuneCount(inserted[0])}
	}

	newLines := make([][]byte, 0, len(inserted)-1)
	for _, l := range inserted[1:] {
		newLines = append(newLines, append([]byte(nil), l...))
	}
	lastLen := utf8.RuneCount(newLines[len(newLines)-1])
	newLines[len(newLines)-1] = append(newLines[len(newLines)-1], tail...)

	rest := append([][]byte(nil), sb.lines[vp.Line+1:]...)
	sb.lines = append(sb.lines[:vp.Line], head)
	sb.lines = append(sb.lines, newLines...)
	sb.lines = append(sb.lines, rest...)
	return Position{Line: vp.Line + len(newLines), Col: lastLen}
}

// Delete removes the text in [start, end). Reversed ranges are swapped.
func (sb *SliceBuffer) Delete(start, end Position) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.deleteLocked(start, end)
	return nil
}

func (sb *SliceBuffer) deleteLocked(start, end Position) Position {
	if end.Before(start) {
		start, end = end, start
	}
	vStart, startOff := sb.validatePosition(start)
	vEnd, endOff := sb.validatePosition(end)
	if vStart == vEnd {
		return vStart
	}
	sb.modified = true

	startLine := sb.lines[vStart.Line]
	endPart := append([]byte(nil), sb.lines[vEnd.Line][endOff:]...)
	sb.lines[vStart.Line] = append(startLine[:startOff:startOff], endPart...)
	if vEnd.Line > vStart.Line {
		sb.lines = append(sb.lines[:vStart.Line+1], sb.lines[vEnd.Line+1:]...)
	}
	return vStart
}

// Replace swaps the text in [start, end) for text as one edit and returns the
// position just past the inserted text.
func (sb *SliceBuffer) Replace(start, end Position, text []byte) (Position, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	at := sb.deleteLocked(start, end)
	return sb.insertLocked(at, text), nil
}

var _ Buffer = (*SliceBuffer)(nil)
