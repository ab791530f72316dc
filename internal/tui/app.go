package tui

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/buffer"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/editortab"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/event"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/host"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/statusbar"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
)

const statusBarHeight = 1

const helpMessage = "Ctrl+S Save | Ctrl+R Run | Ctrl+F Find | Ctrl+G Declaration | Ctrl+T Rename | Esc Quit"

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Register is an in-process clipboard, used when the system one is disabled
// or unavailable.
type Register struct{ Text string }

func (r *Register) WriteAll(text string) error {
	r.Text = text
	return nil
}

// Options configure the terminal host.
type Options struct {
	Keymap          Keymap
	Themes          *theme.Manager
	ScrollOff       int
	SystemClipboard bool
	MessageTimeout  time.Duration
	QueueSize       int
}

type promptKind int

const (
	promptNone promptKind = iota
	promptFind
	promptRename
)

var promptLabels = map[promptKind]string{
	promptFind:   "Find: ",
	promptRename: "Rename to: ",
}

// App drives one editor tab on a tcell screen. Everything except Notify and
// the UI queue's Post runs on the goroutine calling Run.
type App struct {
	screen    tcell.Screen
	keymap    Keymap
	themes    *theme.Manager
	status    *statusbar.StatusBar
	timeout   time.Duration
	queue     *host.Queue
	clip      Clipboard
	register  Register
	scrollOff int
	ctx       context.Context

	comp  *editortab.Component
	unsub []func()

	top, left int
	prompt    promptKind
	input     []rune
	quitArmed bool
	quit      bool
}

// New creates the host for screen.
func New(screen tcell.Screen, opts Options) *App {
	if opts.Keymap == nil {
		opts.Keymap = DefaultKeymap()
	}
	if opts.Themes == nil {
		opts.Themes = theme.NewManager()
	}
	if opts.MessageTimeout <= 0 {
		opts.MessageTimeout = 4 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	a := &App{
		screen:    screen,
		keymap:    opts.Keymap,
		themes:    opts.Themes,
		timeout:   opts.MessageTimeout,
		scrollOff: opts.ScrollOff,
		ctx:       context.Background(),
	}
	a.status = statusbar.New(statusbar.ConfigFromTheme(a.themes.Current(), a.timeout))
	a.queue = host.NewQueue(opts.QueueSize, a.wake)
	a.clip = &a.register
	if opts.SystemClipboard && !clipboard.Unsupported {
		a.clip = systemClipboard{}
	}
	return a
}

func (a *App) wake() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// UI is the thread the tab posts its results to.
func (a *App) UI() plugin.UIThread { return a.queue }

// Notify shows message in the status bar. It may be called from any
// goroutine.
func (a *App) Notify(level plugin.Level, message string) {
	a.status.SetMessage("%s", message)
	a.wake()
}

// Status exposes the status bar.
func (a *App) Status() *statusbar.StatusBar { return a.status }

// Attach makes c the displayed tab.
func (a *App) Attach(c *editortab.Component) {
	a.detach()
	a.comp = c
	a.top, a.left = 0, 0
	ev := c.Events()
	a.unsub = append(a.unsub,
		ev.Subscribe(event.TypeFileSaved, func(e event.Event) bool {
			if d, ok := e.Data.(event.FileSavedData); ok {
				a.status.SetMessage("Saved %s", d.FilePath)
			}
			return false
		}),
		ev.Subscribe(event.TypeRunRequested, func(e event.Event) bool {
			if d, ok := e.Data.(event.RunRequestedData); ok {
				a.status.SetMessage("Running: %s", d.Command)
			}
			return false
		}),
		ev.Subscribe(event.TypeSettingsReloaded, func(e event.Event) bool {
			if d, ok := e.Data.(event.SettingsReloadedData); ok {
				a.applyTheme(d.Settings.Theme)
			}
			return false
		}),
	)
	a.applyTheme(c.Settings().Theme)
}

func (a *App) detach() {
	for _, fn := range a.unsub {
		fn()
	}
	a.unsub = nil
	a.comp = nil
}

func (a *App) applyTheme(name string) {
	if err := a.themes.SetTheme(name); err != nil {
		logger.DebugTagf("theme", "keeping %s: %v", a.themes.Current().Name, err)
	}
	a.screen.SetStyle(a.themes.Current().Style(theme.StyleDefault))
	a.status.SetConfig(statusbar.ConfigFromTheme(a.themes.Current(), a.timeout))
}

// Pending runs work posted by the tab and reports how much ran.
func (a *App) Pending() int { return a.queue.Drain() }

// Done reports whether the user asked to quit.
func (a *App) Done() bool { return a.quit }

// Run processes terminal events until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	stop := context.AfterFunc(ctx, a.wake)
	defer stop()
	defer a.detach()

	a.status.SetMessage(helpMessage)
	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			a.HandleKey(ev)
		}
		a.Pending()
		if a.quit {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		a.Draw()
	}
}

func (a *App) viewSize() (width, height int) {
	w, h := a.screen.Size()
	return w, h - statusBarHeight
}

// HandleKey applies one key press.
func (a *App) HandleKey(ev *tcell.EventKey) {
	if a.comp == nil {
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlQ {
			a.quit = true
		}
		return
	}
	if a.prompt != promptNone {
		a.handlePrompt(ev)
		return
	}

	action := a.keymap.Lookup(ev)
	if action != ActionQuit {
		a.quitArmed = false
	}
	c := a.comp
	cur := c.Cursor()
	lines := c.Lines()
	_, viewH := a.viewSize()

	switch action {
	case ActionInsertRune:
		a.insert(string(ev.Rune()))
	case ActionInsertNewline:
		a.insert("\n")
	case ActionInsertTab:
		s := c.Settings()
		if s.InsertSpaces {
			a.insert(strings.Repeat(" ", s.TabSize))
		} else {
			a.insert("\t")
		}
	case ActionDeleteBackward:
		switch {
		case cur.Col > 0:
			a.delete(buffer.Position{Line: cur.Line, Col: cur.Col - 1}, cur)
		case cur.Line > 0:
			prev := utf8.RuneCount(lines[cur.Line-1])
			a.delete(buffer.Position{Line: cur.Line - 1, Col: prev}, cur)
		}
	case ActionDeleteForward:
		switch {
		case cur.Line < len(lines) && cur.Col < utf8.RuneCount(lines[cur.Line]):
			a.delete(cur, buffer.Position{Line: cur.Line, Col: cur.Col + 1})
		case cur.Line+1 < len(lines):
			a.delete(cur, buffer.Position{Line: cur.Line + 1, Col: 0})
		}
	case ActionMoveUp:
		c.SetCursor(cur.Line-1, cur.Col)
	case ActionMoveDown:
		if cur.Line+1 < len(lines) {
			c.SetCursor(cur.Line+1, cur.Col)
		}
	case ActionMoveLeft:
		switch {
		case cur.Col > 0:
			c.SetCursor(cur.Line, cur.Col-1)
		case cur.Line > 0:
			c.SetCursor(cur.Line-1, utf8.RuneCount(lines[cur.Line-1]))
		}
	case ActionMoveRight:
		switch {
		case cur.Line < len(lines) && cur.Col < utf8.RuneCount(lines[cur.Line]):
			c.SetCursor(cur.Line, cur.Col+1)
		case cur.Line+1 < len(lines):
			c.SetCursor(cur.Line+1, 0)
		}
	case ActionPageUp:
		c.SetCursor(max(cur.Line-viewH, 0), cur.Col)
	case ActionPageDown:
		c.SetCursor(min(cur.Line+viewH, len(lines)-1), cur.Col)
	case ActionHome:
		c.SetCursor(cur.Line, 0)
	case ActionEnd:
		if cur.Line < len(lines) {
			c.SetCursor(cur.Line, utf8.RuneCount(lines[cur.Line]))
		}
	case ActionSave:
		_ = c.Save(a.ctx)
	case ActionRun:
		_, _ = c.RunEntryPoint(cur.Line)
	case ActionCopyRunCommand:
		cmd, _, err := c.RunCommandFor(cur.Line)
		if err != nil {
			a.status.SetMessage("%v", err)
			return
		}
		a.copy(cmd.Line)
	case ActionFind:
		a.startPrompt(promptFind)
	case ActionFindNext:
		if _, ok := c.FindNext(); !ok {
			a.status.SetMessage("No matches")
		}
	case ActionGoToDeclaration:
		if decl, err := c.GoToDeclaration(a.ctx, cur.Line, cur.Col); err == nil {
			a.status.SetMessage("%s declared at line %d", decl.Name, decl.Line+1)
		}
	case ActionRename:
		a.startPrompt(promptRename)
	case ActionQuit:
		if c.IsModified() && !a.quitArmed {
			a.quitArmed = true
			a.status.SetMessage("Unsaved changes. Press Esc again to quit, Ctrl+S to save")
			return
		}
		a.quit = true
	case ActionForceQuit:
		a.quit = true
	}
}

func (a *App) insert(text string) {
	if _, err := a.comp.InsertText(a.comp.Cursor(), text); err != nil {
		a.status.SetMessage("%v", err)
	}
}

func (a *App) delete(start, end buffer.Position) {
	if err := a.comp.DeleteRange(start, end); err != nil {
		a.status.SetMessage("%v", err)
	}
}

func (a *App) copy(text string) {
	if err := a.clip.WriteAll(text); err != nil {
		logger.Warnf("system clipboard: %v; using the internal register", err)
		_ = a.register.WriteAll(text)
	}
	a.status.SetMessage("Copied: %s", text)
}

func (a *App) startPrompt(kind promptKind) {
	a.prompt = kind
	a.input = a.input[:0]
	a.status.SetPrompt(promptLabels[kind], "")
}

func (a *App) endPrompt() {
	a.prompt = promptNone
	a.status.SetPrompt("", "")
}

func (a *App) handlePrompt(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.endPrompt()
		return
	case tcell.KeyEnter:
		kind, text := a.prompt, string(a.input)
		a.endPrompt()
		a.submitPrompt(kind, text)
		return
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.input) > 0 {
			a.input = a.input[:len(a.input)-1]
		}
	case tcell.KeyRune:
		a.input = append(a.input, ev.Rune())
	}
	a.status.SetPrompt(promptLabels[a.prompt], string(a.input))
}

func (a *App) submitPrompt(kind promptKind, text string) {
	if text == "" {
		return
	}
	c := a.comp
	switch kind {
	case promptFind:
		n, err := c.Find(text, editortab.SearchOptions{})
		if err != nil {
			return
		}
		if n == 0 {
			a.status.SetMessage("No matches for %q", text)
			return
		}
		c.FindNext()
		a.status.SetMessage("%d match(es) for %q", n, text)
	case promptRename:
		cur := c.Cursor()
		_, _ = c.Rename(a.ctx, cur.Line, cur.Col, text)
	}
}

// ensureVisible scrolls so the cursor stays scrollOff lines inside the view.
func (a *App) ensureVisible(viewH, textW, tabSize int, lines [][]byte) {
	cur := a.comp.Cursor()
	so := min(a.scrollOff, max((viewH-1)/2, 0))
	if cur.Line < a.top+so {
		a.top = max(cur.Line-so, 0)
	}
	if cur.Line >= a.top+viewH-so {
		a.top = cur.Line - viewH + so + 1
	}
	if cur.Line >= len(lines) || textW <= 0 {
		return
	}
	vis := visualColumn(lines[cur.Line], cur.Col, tabSize)
	if vis < a.left {
		a.left = vis
	}
	if vis >= a.left+textW {
		a.left = vis - textW + 1
	}
}

// Draw renders the tab and the status bar.
func (a *App) Draw() {
	s := a.screen
	th := a.themes.Current()
	width, height := s.Size()
	viewW, viewH := a.viewSize()
	base := th.Style(theme.StyleDefault)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			s.SetContent(x, y, ' ', nil, base)
		}
	}
	s.HideCursor()

	if c := a.comp; c != nil && viewH > 0 {
		a.status.SetFileInfo(c.Title(), c.Language().String(), c.IsModified())
		a.status.SetCursor(c.Cursor())
		if msg := c.Message(); msg != "" {
			drawCentered(s, viewW, viewH, msg, th.Style(theme.StyleMessage))
		} else if c.Loaded() {
			a.drawText(th, viewW, viewH)
		}
	}
	a.status.Draw(s, width, height)
	s.Show()
}

func (a *App) drawText(th *theme.Theme, viewW, viewH int) {
	c := a.comp
	set := c.Settings()
	lines := c.Lines()
	runnable := map[int]bool{}
	for _, ep := range c.RunGutter() {
		runnable[ep.Line] = true
	}
	a.status.SetEntryPoints(len(c.EntryPoints()))
	matches := map[int][]editortab.Match{}
	for _, m := range c.Matches() {
		matches[m.Start.Line] = append(matches[m.Start.Line], m)
	}

	g := newGutter(len(lines), set.ShowLineNumbers, set.ShowRunGutter, viewW)
	a.ensureVisible(viewH, viewW-g.width, set.TabSize, lines)
	cur := c.Cursor()

	for row := 0; row < viewH; row++ {
		li := a.top + row
		if li >= len(lines) {
			break
		}
		g.draw(a.screen, row, li, li == cur.Line, runnable[li], th)
		st := &styler{th: th, tokens: c.Tokens(li), matches: matches[li]}
		drawLine(a.screen, g.width, row, viewW, a.left, set.TabSize, lines[li], st)
	}
	if cur.Line < len(lines) {
		x := g.width + visualColumn(lines[cur.Line], cur.Col, set.TabSize) - a.left
		a.screen.ShowCursor(x, cur.Line-a.top)
	}
}
