package editortab

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/buffer"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/entrypoint"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/event"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/highlight"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/project"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/runcmd"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

var (
	ErrNoFilePath   = errors.New("tab has no file path")
	ErrNoEntryPoint = errors.New("no entry point on line")
	ErrNoExecutor   = errors.New("host provides no executor")
	ErrNotLoaded    = errors.New("file is not loaded")
	ErrClosed       = errors.New("tab is closed")
)

// documentEnd is clamped by the buffer to the end of the last line.
var documentEnd = buffer.Position{Line: math.MaxInt32, Col: math.MaxInt32}

// DefaultRescanDelay is the pause after an edit before entry points are
// detected again.
const DefaultRescanDelay = 300 * time.Millisecond

// Options are the shared services a component uses. Zero fields get
// defaults.
type Options struct {
	Events         *event.Manager
	Synthesizer    *runcmd.Synthesizer
	Resolver       *project.Resolver
	Highlighter    *highlight.Highlighter
	RescanDelay    time.Duration
	HighlightDelay time.Duration
}

// Component is one open editor tab. Its methods are safe to call from the
// host's UI thread while background work runs; results of background work
// reach the component through the host's UIThread.
type Component struct {
	pctx        *plugin.Context
	events      *event.Manager
	synth       *runcmd.Synthesizer
	resolver    *project.Resolver
	highlighter *highlight.Highlighter
	hl          *highlight.Manager
	rescanDelay time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	group     errgroup.Group
	ready     chan struct{}
	readyOnce sync.Once

	mu          sync.Mutex
	data        TabData
	buf         *buffer.SliceBuffer
	search      *Search
	language    lang.Language
	loaded      bool
	message     string
	version     uint64
	entryPoints []entrypoint.EntryPoint
	tokens      highlight.Result
	symbols     *highlight.Index
	cursor      buffer.Position
	settings    settings.Settings
	rescanTimer *time.Timer
	scanGen     uint64
	unsubscribe func()
	closed      bool

	asMu     sync.Mutex
	autosave *autoSaver
}

// Factory returns the tab factory registered for TabType.
func Factory(opts Options) plugin.TabFactory {
	return func(ctx context.Context, cfg plugin.TabConfig, pctx *plugin.Context) (plugin.TabComponent, error) {
		data, err := FromInfo(cfg)
		if err != nil {
			return nil, err
		}
		return NewComponent(ctx, data, pctx, opts), nil
	}
}

// NewComponent creates a tab and starts loading its file in the background.
// A tab without a file starts with DefaultContent.
func NewComponent(ctx context.Context, data TabData, pctx *plugin.Context, opts Options) *Component {
	if pctx == nil {
		pctx = &plugin.Context{}
	}
	c := &Component{
		pctx:        pctx,
		events:      opts.Events,
		synth:       opts.Synthesizer,
		resolver:    opts.Resolver,
		highlighter: opts.Highlighter,
		rescanDelay: opts.RescanDelay,
		data:        data,
		buf:         buffer.NewSliceBuffer(nil),
		settings:    settings.Defaults(),
		ready:       make(chan struct{}),
	}
	if c.events == nil {
		c.events = event.NewManager()
	}
	if c.synth == nil {
		c.synth = runcmd.New(nil, "")
	}
	if c.highlighter == nil {
		c.highlighter = highlight.NewHighlighter()
	}
	if c.rescanDelay <= 0 {
		c.rescanDelay = DefaultRescanDelay
	}
	if c.data.Title == "" {
		c.data = c.data.UpdateTitle(BaseTitle(c.data.FilePath))
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.search = NewSearch(c.buf)
	c.hl = highlight.NewManager(c.highlighter, opts.HighlightDelay, c.highlightSnapshot, func(a *highlight.Analysis) {
		c.post(func() { c.applyAnalysis(a) })
	})

	if pctx.Settings != nil {
		c.settings = pctx.Settings.Current()
		c.unsubscribe = pctx.Settings.Subscribe(func(s settings.Settings) {
			c.post(func() { c.applySettings(s) })
		})
	}
	c.configureAutoSave()

	if data.FilePath == "" {
		c.buf.SetBytes([]byte(DefaultContent))
		c.loaded = true
		c.markReady()
		c.requestAnalysis()
	} else {
		c.startLoad(data.FilePath)
	}
	return c
}

func (c *Component) post(fn func()) {
	if c.pctx.UI != nil {
		c.pctx.UI.Post(fn)
		return
	}
	fn()
}

func (c *Component) dispatch(t event.Type, data any) {
	c.events.Dispatch(event.Event{Type: t, TabID: c.data.ID, Data: data})
}

func (c *Component) notify(level plugin.Level, msg string) {
	if c.pctx.Notifier != nil {
		c.pctx.Notifier.Notify(level, msg)
	}
}

// fail logs err and shows it to the user.
func (c *Component) fail(what string, err error) {
	logger.Warnf("editor tab %s: %s: %v", c.data.ID, what, err)
	c.notify(plugin.LevelError, fmt.Sprintf("%s: %v", what, err))
}

func (c *Component) detectLanguage(path, content string) lang.Language {
	l := lang.Unknown
	if c.pctx.Content != nil {
		l = lang.Parse(c.pctx.Content.DetectLanguage(path))
	}
	if l == lang.Unknown {
		l = lang.Detect(path, []byte(content))
	}
	return l
}

func (c *Component) startLoad(path string) {
	c.group.Go(func() error {
		var res plugin.FileReadResult
		if c.pctx.Content == nil {
			res = plugin.FileReadResult{Status: plugin.ReadError, Message: "No content provider available"}
		} else {
			res = c.pctx.Content.ReadFile(c.ctx, path)
		}
		if c.ctx.Err() != nil {
			return nil
		}
		l := lang.Unknown
		if res.Status == plugin.ReadSuccess {
			l = c.detectLanguage(path, res.Content)
		}
		c.post(func() { c.applyLoad(path, res, l) })
		return nil
	})
}

func (c *Component) applyLoad(path string, res plugin.FileReadResult, l lang.Language) {
	msg := LoadMessage(res, path)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.message = msg
	c.loaded = true
	if msg == "" {
		c.buf.SetBytes([]byte(res.Content))
		c.language = l
		c.version++
	}
	c.mu.Unlock()

	if msg != "" {
		logger.Warnf("editor tab %s: %s", c.data.ID, msg)
	} else {
		logger.Debugf("editor tab %s: loaded %s as %s", c.data.ID, path, l)
		c.search.Refresh()
		c.requestAnalysis()
	}
	c.dispatch(event.TypeFileLoaded, event.FileLoadedData{FilePath: path, Message: msg})
	c.markReady()
}

func (c *Component) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *Component) requestAnalysis() {
	c.scheduleRescan()
	c.hl.Request()
}

func (c *Component) scheduleRescan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.rescanTimer != nil {
		c.rescanTimer.Reset(c.rescanDelay)
		return
	}
	c.rescanTimer = time.AfterFunc(c.rescanDelay, c.rescan)
}

// rescan detects entry points over a snapshot of the content. Only the
// newest scan may publish.
func (c *Component) rescan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rescanTimer = nil
	if c.closed || c.message != "" {
		return
	}
	c.scanGen++
	gen := c.scanGen
	src := string(c.buf.Bytes())
	l := c.language
	path := c.data.FilePath
	c.group.Go(func() error {
		eps := entrypoint.Detect(src, l, path)
		if c.ctx.Err() != nil {
			return nil
		}
		c.post(func() { c.applyEntryPoints(gen, eps) })
		return nil
	})
}

func (c *Component) applyEntryPoints(gen uint64, eps []entrypoint.EntryPoint) {
	c.mu.Lock()
	if c.closed || gen != c.scanGen || entrypoint.Equal(c.entryPoints, eps) {
		c.mu.Unlock()
		return
	}
	c.entryPoints = eps
	c.mu.Unlock()
	logger.DebugTagf("gutter", "tab %s: %d entry point(s)", c.data.ID, len(eps))
	c.dispatch(event.TypeEntryPointsChanged, event.EntryPointsChangedData{EntryPoints: eps})
}

func (c *Component) highlightSnapshot() highlight.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return highlight.Snapshot{
		Source:   c.buf.Bytes(),
		Language: c.language,
		Semantic: c.settings.SemanticHighlighting,
	}
}

func (c *Component) applyAnalysis(a *highlight.Analysis) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.tokens = a.Merged
	c.symbols = a.Symbols
	c.mu.Unlock()
	c.dispatch(event.TypeHighlightReady, nil)
}

func (c *Component) applySettings(s settings.Settings) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	old := c.settings
	c.settings = s
	c.mu.Unlock()

	if old.AutoSave != s.AutoSave || old.AutoSaveDelayMs != s.AutoSaveDelayMs {
		c.configureAutoSave()
	}
	if old.SemanticHighlighting != s.SemanticHighlighting {
		c.hl.Request()
	}
	c.dispatch(event.TypeSettingsReloaded, event.SettingsReloadedData{Settings: s})
}

func (c *Component) configureAutoSave() {
	c.asMu.Lock()
	defer c.asMu.Unlock()
	if c.autosave != nil {
		c.autosave.stop()
		c.autosave = nil
	}
	c.mu.Lock()
	s, data, closed := c.settings, c.data, c.closed
	c.mu.Unlock()
	if !s.AutoSave || data.FilePath == "" || closed {
		return
	}
	interval := time.Duration(s.AutoSaveDelayMs) * time.Millisecond
	c.autosave = newAutoSaver(data.ID, interval, c.IsModified, func() {
		c.post(func() {
			if err := c.Save(c.ctx); err != nil && !errors.Is(err, ErrClosed) {
				logger.Warnf("editor tab %s: autosave: %v", data.ID, err)
			}
		})
	})
	c.autosave.start()
}

// editable must be called with mu held.
func (c *Component) editable() error {
	switch {
	case c.closed:
		return ErrClosed
	case !c.loaded || c.message != "":
		return ErrNotLoaded
	}
	return nil
}

// contentChanged runs after every edit, outside mu.
func (c *Component) contentChanged() {
	c.search.Refresh()
	c.updateTitle()
	c.dispatch(event.TypeContentChanged, nil)
	c.requestAnalysis()
}

func (c *Component) updateTitle() {
	c.mu.Lock()
	title := BaseTitle(c.data.FilePath)
	if c.buf.IsModified() {
		title += " *"
	}
	prev := c.data.Title
	c.data = c.data.UpdateTitle(title)
	title = c.data.Title
	id := c.data.ID
	c.mu.Unlock()
	if title == prev {
		return
	}
	if c.pctx.Titles != nil {
		c.pctx.Titles.Provider(id).UpdateTitle(title)
	}
	c.dispatch(event.TypeTitleChanged, event.TitleChangedData{Title: title})
}

// InsertText inserts text at pos and moves the cursor past it.
func (c *Component) InsertText(pos buffer.Position, text string) (buffer.Position, error) {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return pos, err
	}
	end, err := c.buf.Insert(pos, []byte(text))
	if err == nil {
		c.version++
		c.cursor = end
	}
	c.mu.Unlock()
	if err != nil {
		return pos, err
	}
	c.contentChanged()
	return end, nil
}

// DeleteRange removes [start, end) and leaves the cursor at start.
func (c *Component) DeleteRange(start, end buffer.Position) error {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if end.Before(start) {
		start, end = end, start
	}
	err := c.buf.Delete(start, end)
	if err == nil {
		c.version++
		c.cursor = start
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.contentChanged()
	return nil
}

// SetContent replaces the whole document, as an embedded editor reports it.
func (c *Component) SetContent(content string) error {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if string(c.buf.Bytes()) == content {
		c.mu.Unlock()
		return nil
	}
	_, err := c.buf.Replace(buffer.Position{}, documentEnd, []byte(content))
	if err == nil {
		c.version++
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.contentChanged()
	return nil
}

// Save writes the content through the host. The modified flag is cleared
// only if nothing changed while writing.
func (c *Component) Save(ctx context.Context) error {
	err := c.save(ctx)
	if err != nil && !errors.Is(err, ErrClosed) {
		c.fail("Save failed", err)
	}
	return err
}

func (c *Component) save(ctx context.Context) error {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	path := c.data.FilePath
	content := string(c.buf.Bytes())
	version := c.version
	c.mu.Unlock()

	if path == "" {
		return ErrNoFilePath
	}
	if c.pctx.Content == nil {
		return errors.New("no content provider available")
	}
	if err := c.pctx.Content.WriteFile(ctx, path, content); err != nil {
		return err
	}

	c.mu.Lock()
	if c.version == version {
		c.buf.MarkSaved()
	}
	c.mu.Unlock()
	logger.Infof("editor tab %s: saved %s", c.data.ID, path)
	c.updateTitle()
	c.dispatch(event.TypeFileSaved, event.FileSavedData{FilePath: path})
	return nil
}

// RunCommandFor synthesizes the command for the entry point on line without
// running it.
func (c *Component) RunCommandFor(line int) (runcmd.Command, entrypoint.EntryPoint, error) {
	c.mu.Lock()
	path := c.data.FilePath
	eps := c.entryPoints
	c.mu.Unlock()
	if path == "" {
		return runcmd.Command{}, entrypoint.EntryPoint{}, ErrNoFilePath
	}
	ep, ok := entrypoint.At(eps, line)
	if !ok {
		return runcmd.Command{}, entrypoint.EntryPoint{}, fmt.Errorf("%w %d", ErrNoEntryPoint, line+1)
	}
	root := c.resolver.Resolve(path)
	return c.synth.Synthesize(ep, root), ep, nil
}

// RunEntryPoint hands the command for the entry point on line to the host
// executor and returns it. Execution continues independently of the tab.
func (c *Component) RunEntryPoint(line int) (runcmd.Command, error) {
	cmd, ep, err := c.RunCommandFor(line)
	if err == nil && c.pctx.Executor == nil {
		err = ErrNoExecutor
	}
	if err != nil {
		c.fail("Run failed", err)
		return cmd, err
	}

	logger.Infof("editor tab %s: running %s: %s (in %s)", c.data.ID, ep.FunctionName, cmd.Line, cmd.Dir)
	c.dispatch(event.TypeRunRequested, event.RunRequestedData{Command: cmd.Line, Dir: cmd.Dir})
	exec := c.pctx.Executor
	ctx := context.WithoutCancel(c.ctx)
	go func() {
		if err := exec.Execute(ctx, cmd.Line, cmd.Dir); err != nil {
			c.fail(fmt.Sprintf("Run %s failed", ep.FunctionName), err)
		}
	}()
	return cmd, nil
}

// Find starts a search and returns the number of matches.
func (c *Component) Find(query string, opts SearchOptions) (int, error) {
	n, err := c.search.Find(query, opts)
	if err != nil {
		c.notify(plugin.LevelWarning, err.Error())
	}
	return n, err
}

// FindNext moves the cursor to the next match after it.
func (c *Component) FindNext() (Match, bool) {
	m, ok := c.search.Next(c.Cursor())
	if ok {
		c.SetCursor(m.Start.Line, m.Start.Col)
	}
	return m, ok
}

// FindPrev moves the cursor to the previous match before it.
func (c *Component) FindPrev() (Match, bool) {
	m, ok := c.search.Prev(c.Cursor())
	if ok {
		c.SetCursor(m.Start.Line, m.Start.Col)
	}
	return m, ok
}

// Replace replaces the selected match, selecting one first if needed.
func (c *Component) Replace(replacement string) (bool, error) {
	if _, ok := c.search.Current(); !ok {
		if _, ok := c.search.Next(c.Cursor()); !ok {
			return false, nil
		}
	}
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return false, err
	}
	end, err := c.search.ReplaceCurrent(replacement)
	if err == nil {
		c.version++
		c.cursor = end
	}
	c.mu.Unlock()
	if err != nil {
		return false, err
	}
	c.contentChanged()
	return true, nil
}

// ReplaceAll replaces every match and returns the count.
func (c *Component) ReplaceAll(replacement string) (int, error) {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	n, err := c.search.ReplaceAll(replacement)
	if n > 0 {
		c.version++
	}
	c.mu.Unlock()
	if n > 0 {
		c.contentChanged()
	}
	return n, err
}

// Matches returns the active search's matches.
func (c *Component) Matches() []Match { return c.search.Matches() }

// Close cancels background work, waits for it and releases the tab's
// subscriptions.
func (c *Component) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.rescanTimer != nil {
		c.rescanTimer.Stop()
		c.rescanTimer = nil
	}
	unsubscribe := c.unsubscribe
	c.mu.Unlock()

	c.cancel()
	c.hl.Shutdown()
	if unsubscribe != nil {
		unsubscribe()
	}
	c.asMu.Lock()
	if c.autosave != nil {
		c.autosave.stop()
		c.autosave = nil
	}
	c.asMu.Unlock()

	err := c.group.Wait()
	logger.Debugf("editor tab %s closed", c.data.ID)
	c.dispatch(event.TypeTabClosed, nil)
	return err
}

// WaitLoaded blocks until the initial load has been applied, successful or
// not.
func (c *Component) WaitLoaded(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	default:
	}
	select {
	case <-c.ready:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Component) ID() string                  { return c.data.ID }
func (c *Component) TabType() plugin.TabTypeInfo { return TabType }
func (c *Component) Events() *event.Manager      { return c.events }

func (c *Component) Data() TabData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data
}

func (c *Component) Title() string { return c.Data().Title }

func (c *Component) Content() string {
	return string(c.buf.Bytes())
}

// Lines returns the document lines; the slices must not be modified.
func (c *Component) Lines() [][]byte { return c.buf.Lines() }

func (c *Component) Language() lang.Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// Message is the text shown instead of the editor when loading failed.
func (c *Component) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Component) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Component) IsModified() bool { return c.buf.IsModified() }

func (c *Component) Settings() settings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// EntryPoints returns the latest scan result.
func (c *Component) EntryPoints() []entrypoint.EntryPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entrypoint.EntryPoint(nil), c.entryPoints...)
}

// RunGutter returns the entry points to mark, none when the gutter is off.
func (c *Component) RunGutter() []entrypoint.EntryPoint {
	if !c.Settings().ShowRunGutter {
		return nil
	}
	return c.EntryPoints()
}

// Tokens returns the highlighting tokens of one line.
func (c *Component) Tokens(line int) []highlight.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens[line]
}

func (c *Component) Cursor() buffer.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// SetCursor moves the cursor, clamped to the document.
func (c *Component) SetCursor(line, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = c.buf.PositionAt(c.buf.Offset(buffer.Position{Line: line, Col: col}))
}

var _ plugin.TabComponent = (*Component)(nil)
