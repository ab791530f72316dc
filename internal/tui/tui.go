// Package tui is a terminal host for one editor tab, built on tcell.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
)

// NewScreen creates and initializes the terminal screen.
func NewScreen(t *theme.Theme) (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("initialize screen: %w", err)
	}
	s.SetStyle(t.Style(theme.StyleDefault))
	return s, nil
}
