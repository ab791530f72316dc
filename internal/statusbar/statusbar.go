// Package statusbar draws the editor's bottom line: tab title, language and
// cursor position, temporary messages and input prompts.
package statusbar

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/buffer"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
)

// Config defines the appearance and behavior of the status bar.
type Config struct {
	StyleDefault   tcell.Style
	StyleModified  tcell.Style
	StyleMessage   tcell.Style
	StylePrompt    tcell.Style
	MessageTimeout time.Duration
}

// ConfigFromTheme takes the status bar styles from t.
func ConfigFromTheme(t *theme.Theme, timeout time.Duration) Config {
	return Config{
		StyleDefault:   t.Style(theme.StyleStatusBar),
		StyleModified:  t.Style(theme.StyleStatusModified),
		StyleMessage:   t.Style(theme.StyleStatusMessage),
		StylePrompt:    t.Style(theme.StyleStatusPrompt),
		MessageTimeout: timeout,
	}
}

// StatusBar holds what the status line shows. It is safe for concurrent use.
type StatusBar struct {
	config Config
	mu     sync.Mutex

	title       string
	language    string
	modified    bool
	cursor      buffer.Position
	entryPoints int

	prompt string
	input  string

	message     string
	messageTime time.Time
	now         func() time.Time
}

// New creates a status bar.
func New(config Config) *StatusBar {
	return &StatusBar{config: config, now: time.Now}
}

// SetConfig replaces the styles, e.g. after a theme change.
func (sb *StatusBar) SetConfig(config Config) {
	sb.mu.Lock()
	sb.config = config
	sb.mu.Unlock()
}

// SetFileInfo updates the title, language and modified marker.
func (sb *StatusBar) SetFileInfo(title, language string, modified bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.title, sb.language, sb.modified = title, language, modified
}

// SetCursor updates the displayed cursor position.
func (sb *StatusBar) SetCursor(pos buffer.Position) {
	sb.mu.Lock()
	sb.cursor = pos
	sb.mu.Unlock()
}

// SetEntryPoints updates the runnable entry point count.
func (sb *StatusBar) SetEntryPoints(n int) {
	sb.mu.Lock()
	sb.entryPoints = n
	sb.mu.Unlock()
}

// SetMessage shows a message until the timeout elapses.
func (sb *StatusBar) SetMessage(format string, args ...any) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.message = fmt.Sprintf(format, args...)
	sb.messageTime = sb.now()
}

// ClearMessage drops the temporary message.
func (sb *StatusBar) ClearMessage() {
	sb.mu.Lock()
	sb.message, sb.messageTime = "", time.Time{}
	sb.mu.Unlock()
}

// SetPrompt shows an input prompt with the text typed so far. An empty
// prompt ends input mode.
func (sb *StatusBar) SetPrompt(prompt, input string) {
	sb.mu.Lock()
	sb.prompt, sb.input = prompt, input
	sb.mu.Unlock()
}

// Text returns the left and right parts of the line and the style to draw
// them with.
func (sb *StatusBar) Text() (left, right string, style tcell.Style) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.prompt != "" {
		return sb.prompt + sb.input, "", sb.config.StylePrompt
	}
	if !sb.messageTime.IsZero() {
		if sb.now().Sub(sb.messageTime) <= sb.config.MessageTimeout {
			return sb.message, "", sb.config.StyleMessage
		}
		sb.message, sb.messageTime = "", time.Time{}
	}

	left = sb.title
	if left == "" {
		left = "[No Name]"
	}
	style = sb.config.StyleDefault
	if sb.modified {
		style = sb.config.StyleModified
	}
	right = fmt.Sprintf("Ln %d, Col %d", sb.cursor.Line+1, sb.cursor.Col+1)
	if sb.language != "" {
		right = sb.language + "  " + right
	}
	if sb.entryPoints > 0 {
		right = fmt.Sprintf("▶ %d  %s", sb.entryPoints, right)
	}
	return left, right, style
}

// Draw renders the status bar on the last screen row.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1
	left, right, style := sb.Text()
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
	end := drawString(screen, 0, y, width, left, style)
	if right == "" {
		return
	}
	rx := width - uniseg.StringWidth(right) - 1
	if rx <= end {
		return
	}
	drawString(screen, rx, y, width, right, style)
}

// drawString draws s from x by grapheme cluster and returns the column after
// the last cluster drawn.
func drawString(screen tcell.Screen, x, y, maxX int, s string, style tcell.Style) int {
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := gr.Width()
		if x+w > maxX {
			break
		}
		runes := gr.Runes()
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}
