package theme

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// StyleDef is one style in a theme file. Unset fields inherit from the
// file's Default style.
type StyleDef struct {
	Fg        *string `toml:"fg"`
	Bg        *string `toml:"bg"`
	Bold      *bool   `toml:"bold"`
	Italic    *bool   `toml:"italic"`
	Underline *bool   `toml:"underline"`
	Reverse   *bool   `toml:"reverse"`
}

type file struct {
	Name   string              `toml:"name"`
	IsDark bool                `toml:"is_dark"`
	Styles map[string]StyleDef `toml:"styles"`
}

// LoadFile parses a TOML theme. A file without a name is named after itself.
func LoadFile(path string) (*Theme, error) {
	var f file
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("theme %s: unrecognized keys %v", path, undecoded)
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	t := &Theme{Name: f.Name, IsDark: f.IsDark, Styles: make(map[string]tcell.Style, len(f.Styles)+1)}
	base := tcell.StyleDefault
	if def, ok := f.Styles[StyleDefault]; ok {
		if base, err = convert(def, tcell.StyleDefault); err != nil {
			return nil, fmt.Errorf("theme %s: style %s: %w", t.Name, StyleDefault, err)
		}
	}
	t.Styles[StyleDefault] = base

	for name, def := range f.Styles {
		if name == StyleDefault {
			continue
		}
		style, err := convert(def, base)
		if err != nil {
			logger.Warnf("theme %s: skipping style %s: %v", t.Name, name, err)
			continue
		}
		t.Styles[name] = style
	}
	logger.Debugf("loaded theme %q from %s (%d styles)", t.Name, path, len(t.Styles))
	return t, nil
}

func convert(def StyleDef, base tcell.Style) (tcell.Style, error) {
	style := base
	if def.Fg != nil {
		c, err := ParseColor(*def.Fg)
		if err != nil {
			return style, fmt.Errorf("foreground: %w", err)
		}
		style = style.Foreground(c)
	}
	if def.Bg != nil {
		c, err := ParseColor(*def.Bg)
		if err != nil {
			return style, fmt.Errorf("background: %w", err)
		}
		style = style.Background(c)
	}
	if def.Bold != nil {
		style = style.Bold(*def.Bold)
	}
	if def.Italic != nil {
		style = style.Italic(*def.Italic)
	}
	if def.Underline != nil {
		style = style.Underline(*def.Underline)
	}
	if def.Reverse != nil {
		style = style.Reverse(*def.Reverse)
	}
	return style, nil
}

// ParseColor accepts #RRGGBB, the W3C color names tcell knows, "reset" and
// "default".
func ParseColor(s string) (tcell.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "reset":
		return tcell.ColorReset, nil
	case "default":
		return tcell.ColorDefault, nil
	}
	if strings.HasPrefix(s, "#") && len(s) != 7 {
		return tcell.ColorDefault, fmt.Errorf("invalid hex color %q, want #RRGGBB", s)
	}
	c := tcell.GetColor(s)
	if c == tcell.ColorDefault {
		return c, fmt.Errorf("unknown color %q", s)
	}
	return c, nil
}
