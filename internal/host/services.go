package host

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

// ShellExecutor runs commands through the platform shell.
type ShellExecutor struct {
	Stdout io.Writer
	Stderr io.Writer
}

func shellArgs(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "powershell", []string{"-NoProfile", "-Command", command}
	}
	return "sh", []string{"-c", command}
}

// Execute implements plugin.Executor and waits for the command to finish.
func (e *ShellExecutor) Execute(ctx context.Context, command, dir string) error {
	name, args := shellArgs(command)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	logger.DebugTagf("run", "executing %q in %s", command, dir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}

// Titles tracks tab titles and reports changes.
type Titles struct {
	mu       sync.Mutex
	titles   map[string]string
	OnChange func(tabID, title string)
}

// NewTitles creates an empty title table.
func NewTitles(onChange func(tabID, title string)) *Titles {
	return &Titles{titles: make(map[string]string), OnChange: onChange}
}

// Provider implements plugin.TitleProviderFactory.
func (t *Titles) Provider(tabID string) plugin.TitleProvider {
	return titleProvider{titles: t, id: tabID}
}

// Title returns the last title set for tabID.
func (t *Titles) Title(tabID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.titles[tabID]
}

type titleProvider struct {
	titles *Titles
	id     string
}

func (p titleProvider) UpdateTitle(title string) {
	p.titles.mu.Lock()
	p.titles.titles[p.id] = title
	onChange := p.titles.OnChange
	p.titles.mu.Unlock()
	if onChange != nil {
		onChange(p.id, title)
	}
}

// NavigatorFunc adapts a function to plugin.Navigator.
type NavigatorFunc func(path string, line, col int) error

func (f NavigatorFunc) Open(path string, line, col int) error { return f(path, line, col) }

// LogNotifier writes notifications to the log and forwards them to Sink.
type LogNotifier struct {
	Sink func(level plugin.Level, message string)
}

func (n LogNotifier) Notify(level plugin.Level, message string) {
	switch level {
	case plugin.LevelError:
		logger.Errorf("notify: %s", message)
	case plugin.LevelWarning:
		logger.Warnf("notify: %s", message)
	default:
		logger.Infof("notify: %s", message)
	}
	if n.Sink != nil {
		n.Sink(level, message)
	}
}

// Inline runs posted work immediately on the caller's goroutine. It suits
// hosts without an event loop, such as the CLI and tests.
type Inline struct{}

func (Inline) Post(fn func()) { fn() }

// Queue collects posted work until the owning loop drains it.
type Queue struct {
	ch     chan func()
	notify func()
}

// NewQueue creates a queue. wake, if set, is called after every Post so the
// owning loop can schedule a drain.
func NewQueue(size int, wake func()) *Queue {
	return &Queue{ch: make(chan func(), size), notify: wake}
}

func (q *Queue) Post(fn func()) {
	q.ch <- fn
	if q.notify != nil {
		q.notify()
	}
}

// Drain runs the queued work and returns how many items ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case fn := <-q.ch:
			fn()
			n++
		default:
			return n
		}
	}
}

var (
	_ plugin.Executor  = (*ShellExecutor)(nil)
	_ plugin.Navigator = NavigatorFunc(nil)
	_ plugin.Notifier  = LogNotifier{}
	_ plugin.UIThread  = Inline{}
	_ plugin.UIThread  = (*Queue)(nil)
)
