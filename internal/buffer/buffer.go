// Package buffer holds the text of an open editor tab.
package buffer

// Position is a cursor or text position within the buffer.
// Line is 0-based; Col counts runes within the line.
type Position struct {
	Line int `json:"line" yaml:"line"`
	Col  int `json:"col" yaml:"col"`
}

// Before reports whether p sorts before q.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Buffer is the document behind an editor tab.
type Buffer interface {
	Lines() [][]byte
	Line(index int) ([]byte, error)
	LineCount() int
	Insert(pos Position, text []byte) (Position, error)
	Delete(start, end Position) error
	Replace(start, end Position, text []byte) (Position, error)
	SetBytes(content []byte)
	Bytes() []byte
	Offset(pos Position) int
	PositionAt(offset int) Position
	IsModified() bool
	MarkSaved()
}
