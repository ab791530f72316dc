package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/highlight"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
)

// runMarker is drawn in the gutter of runnable lines.
const runMarker = '▶'

// visualColumn returns the screen column of rune index col in line, with
// tabs expanded to tabSize stops and wide clusters counted double.
func visualColumn(line []byte, col, tabSize int) int {
	vis, ri := 0, 0
	gr := uniseg.NewGraphemes(string(line))
	for ri < col && gr.Next() {
		vis += clusterWidth(gr.Runes(), gr.Width(), vis, tabSize)
		ri += len(gr.Runes())
	}
	return vis
}

func clusterWidth(runes []rune, width, vis, tabSize int) int {
	if runes[0] == '\t' {
		if tabSize <= 0 {
			tabSize = 4
		}
		return tabSize - vis%tabSize
	}
	if width < 1 {
		return 1
	}
	return width
}

// gutter describes the columns left of the text.
type gutter struct {
	digits int
	run    bool
	width  int
}

func newGutter(lineCount int, numbers, run bool, screenWidth int) gutter {
	g := gutter{run: run}
	if numbers {
		g.digits = len(fmt.Sprint(max(lineCount, 1)))
		g.width = g.digits + 1
	}
	if run {
		g.width += 2
	}
	if g.width >= screenWidth {
		return gutter{}
	}
	return g
}

func (g gutter) draw(s tcell.Screen, y, lineIdx int, current, runnable bool, th *theme.Theme) {
	x := 0
	if g.run {
		if runnable {
			s.SetContent(0, y, runMarker, nil, th.Style(theme.StyleRunGutter))
		}
		x = 2
	}
	if g.digits == 0 {
		return
	}
	style := th.Style(theme.StyleLineNumber)
	if current {
		style = th.Style(theme.StyleCurrentLineNumber)
	}
	for i, r := range fmt.Sprintf("%*d", g.digits, lineIdx+1) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// styler picks the style of each rune of one line. Runes must be asked for
// in increasing order.
type styler struct {
	th      *theme.Theme
	tokens  []highlight.Token
	matches []editortab.Match
	k       int
}

func (st *styler) at(ri int) tcell.Style {
	for _, m := range st.matches {
		if ri >= m.Start.Col && ri < m.End.Col {
			return st.th.Style(theme.StyleSearchHighlight)
		}
	}
	for st.k < len(st.tokens) && st.tokens[st.k].End <= ri {
		st.k++
	}
	if st.k < len(st.tokens) && st.tokens[st.k].Start <= ri {
		return st.th.TokenStyle(st.tokens[st.k])
	}
	return st.th.Style(theme.StyleDefault)
}

// drawLine draws the part of line visible from horizontal offset left,
// starting at screen column x0.
func drawLine(s tcell.Screen, x0, y, width, left, tabSize int, line []byte, st *styler) {
	vis, ri := 0, 0
	gr := uniseg.NewGraphemes(string(line))
	for gr.Next() {
		runes := gr.Runes()
		w := clusterWidth(runes, gr.Width(), vis, tabSize)
		style := st.at(ri)
		sx := x0 + vis - left
		switch {
		case sx >= width:
			return
		case runes[0] == '\t':
			for i := 0; i < w; i++ {
				if sx+i >= x0 && sx+i < width {
					s.SetContent(sx+i, y, ' ', nil, style)
				}
			}
		case sx >= x0 && sx+w <= width:
			s.SetContent(sx, y, runes[0], runes[1:], style)
		}
		vis += w
		ri += len(runes)
	}
}

// drawCentered draws text in the middle of the text area.
func drawCentered(s tcell.Screen, width, height int, text string, style tcell.Style) {
	y := height / 2
	x := (width - uniseg.StringWidth(text)) / 2
	if x < 0 {
		x = 0
	}
	gr := uniseg.NewGraphemes(text)
	for gr.Next() && x < width {
		runes := gr.Runes()
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += max(gr.Width(), 1)
	}
}
