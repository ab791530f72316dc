// Package theme maps highlighting token types and editor UI elements to
// terminal styles.
package theme

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/highlight"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// UI style names. Token styles use the token type, optionally followed by
// ".modifier".
const (
	StyleDefault           = "Default"
	StyleLineNumber        = "LineNumber"
	StyleCurrentLineNumber = "LineNumberCurrent"
	StyleRunGutter         = "RunGutter"
	StyleSearchHighlight   = "SearchHighlight"
	StyleMessage           = "Message"
	StyleStatusBar         = "StatusBar"
	StyleStatusModified    = "StatusBarModified"
	StyleStatusMessage     = "StatusBarMessage"
	StyleStatusPrompt      = "StatusBarPrompt"
)

// Theme is a named set of styles.
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// Style looks up name, falling back to the part before the first dot and
// then to the Default style.
func (t *Theme) Style(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}
	if i := strings.IndexByte(name, '.'); i != -1 {
		if style, ok := t.Styles[name[:i]]; ok {
			return style
		}
	}
	if style, ok := t.Styles[StyleDefault]; ok {
		return style
	}
	logger.DebugTagf("theme", "theme %q has no %q or Default style", t.Name, name)
	return tcell.StyleDefault
}

// TokenStyle is the style for a highlighting token.
func (t *Theme) TokenStyle(tok highlight.Token) tcell.Style {
	return t.Style(tok.Style())
}

type palette struct {
	bar, fg, comment, orange, yellow, green, cyan, blue, magenta, red tcell.Color
}

func build(name string, dark bool, p palette) *Theme {
	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(p.fg)
	bar := tcell.StyleDefault.Background(p.bar).Foreground(p.fg)
	return &Theme{
		Name:   name,
		IsDark: dark,
		Styles: map[string]tcell.Style{
			StyleDefault:           base,
			StyleLineNumber:        base.Foreground(p.comment),
			StyleCurrentLineNumber: base.Foreground(p.yellow),
			StyleRunGutter:         base.Foreground(p.green).Bold(true),
			StyleSearchHighlight:   tcell.StyleDefault.Background(tcell.ColorOrange).Foreground(tcell.ColorBlack),
			StyleMessage:           base.Foreground(p.red).Bold(true),
			StyleStatusBar:         bar,
			StyleStatusModified:    bar.Foreground(p.yellow),
			StyleStatusMessage:     bar.Bold(true),
			StyleStatusPrompt:      bar.Foreground(p.green).Bold(true),

			highlight.TypeKeyword:     base.Foreground(p.blue).Bold(true),
			highlight.TypeString:      base.Foreground(p.green),
			highlight.TypeNumber:      base.Foreground(p.orange),
			highlight.TypeComment:     base.Foreground(p.comment).Italic(true),
			highlight.TypeOperator:    base,
			highlight.TypePunctuation: base.Foreground(p.comment),
			highlight.TypeIdentifier:  base,
			highlight.TypeType:        base.Foreground(p.cyan),
			highlight.TypeConstant:    base.Foreground(p.orange),
			highlight.TypeFunction:    base.Foreground(p.yellow),
			highlight.TypeParameter:   base.Italic(true),
			highlight.TypeVariable:    base,
			highlight.TypeProperty:    base.Foreground(p.magenta),
			highlight.TypeNamespace:   base.Foreground(p.cyan),

			highlight.TypeType + "." + highlight.ModDeclaration:     base.Foreground(p.cyan).Bold(true),
			highlight.TypeFunction + "." + highlight.ModDeclaration: base.Foreground(p.yellow).Bold(true),
		},
	}
}

// Dark is the built-in default theme.
var Dark = build("default", true, palette{
	bar:     tcell.NewHexColor(0x2a2f38),
	fg:      tcell.NewHexColor(0xc5cdd9),
	comment: tcell.NewHexColor(0x5c6370),
	orange:  tcell.NewHexColor(0xd19a66),
	yellow:  tcell.NewHexColor(0xe5c07b),
	green:   tcell.NewHexColor(0x98c379),
	cyan:    tcell.NewHexColor(0x56b6c2),
	blue:    tcell.NewHexColor(0x61afef),
	magenta: tcell.NewHexColor(0xc678dd),
	red:     tcell.NewHexColor(0xe06c75),
})

// Light is the built-in light theme.
var Light = build("light", false, palette{
	bar:     tcell.NewHexColor(0xe5e5e6),
	fg:      tcell.NewHexColor(0x383a42),
	comment: tcell.NewHexColor(0xa0a1a7),
	orange:  tcell.NewHexColor(0x986801),
	yellow:  tcell.NewHexColor(0xc18401),
	green:   tcell.NewHexColor(0x50a14f),
	cyan:    tcell.NewHexColor(0x0184bc),
	blue:    tcell.NewHexColor(0x4078f2),
	magenta: tcell.NewHexColor(0xa626a4),
	red:     tcell.NewHexColor(0xe45649),
})
