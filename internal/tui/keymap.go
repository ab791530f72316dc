package tui

import "github.com/gdamore/tcell/v2"

// Action is what a key does.
type Action int

const (
	ActionUnknown Action = iota
	ActionInsertRune
	ActionInsertNewline
	ActionInsertTab
	ActionDeleteBackward
	ActionDeleteForward
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionPageUp
	ActionPageDown
	ActionHome
	ActionEnd
	ActionSave
	ActionRun
	ActionCopyRunCommand
	ActionFind
	ActionFindNext
	ActionGoToDeclaration
	ActionRename
	ActionQuit
	ActionForceQuit
)

// Keymap binds keys to actions. Runes not bound insert themselves.
type Keymap map[tcell.Key]Action

// DefaultKeymap returns the standard bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		tcell.KeyUp:         ActionMoveUp,
		tcell.KeyDown:       ActionMoveDown,
		tcell.KeyLeft:       ActionMoveLeft,
		tcell.KeyRight:      ActionMoveRight,
		tcell.KeyPgUp:       ActionPageUp,
		tcell.KeyPgDn:       ActionPageDown,
		tcell.KeyHome:       ActionHome,
		tcell.KeyEnd:        ActionEnd,
		tcell.KeyEnter:      ActionInsertNewline,
		tcell.KeyTab:        ActionInsertTab,
		tcell.KeyBackspace:  ActionDeleteBackward,
		tcell.KeyBackspace2: ActionDeleteBackward,
		tcell.KeyDelete:     ActionDeleteForward,
		tcell.KeyCtrlS:      ActionSave,
		tcell.KeyCtrlR:      ActionRun,
		tcell.KeyCtrlY:      ActionCopyRunCommand,
		tcell.KeyCtrlF:      ActionFind,
		tcell.KeyCtrlN:      ActionFindNext,
		tcell.KeyCtrlG:      ActionGoToDeclaration,
		tcell.KeyCtrlT:      ActionRename,
		tcell.KeyEscape:     ActionQuit,
		tcell.KeyCtrlQ:      ActionForceQuit,
	}
}

// Lookup returns the action for ev.
func (k Keymap) Lookup(ev *tcell.EventKey) Action {
	if ev.Key() == tcell.KeyRune {
		return ActionInsertRune
	}
	return k[ev.Key()]
}
