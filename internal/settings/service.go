package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// Mode selects how the service notices file changes.
type Mode string

const (
	ModePoll   Mode = "poll"
	ModeNotify Mode = "notify"
)

// DefaultPollInterval is how often the file's modification stamp is checked.
const DefaultPollInterval = 500 * time.Millisecond

// ErrAlreadyStarted is returned by a second Start.
var ErrAlreadyStarted = errors.New("settings service already started")

// Options configures a Service.
type Options struct {
	Interval time.Duration
	Mode     Mode
}

type fileStamp struct {
	exists  bool
	modTime time.Time
	size    int64
}

func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// Service owns the live settings value. It is created when a tab host starts
// and closed when it shuts down; consumers get it injected.
type Service struct {
	path string
	opts Options

	current atomic.Pointer[Settings]

	mu      sync.Mutex
	subs    map[int]func(Settings)
	nextID  int
	stamp   fileStamp
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a service and performs the initial load.
func New(path string, opts Options) *Service {
	if path == "" {
		path = DefaultPath()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Mode == "" {
		opts.Mode = ModePoll
	}
	s := &Service{path: filepath.Clean(path), opts: opts, subs: make(map[int]func(Settings))}
	s.stamp = stampOf(s.path)
	st, err := Load(s.path)
	if err != nil {
		logger.Warnf("settings: %v; using defaults", err)
	}
	s.current.Store(&st)
	return s
}

// Path is the watched settings file.
func (s *Service) Path() string { return s.path }

// Current returns the latest settings value.
func (s *Service) Current() Settings {
	return *s.current.Load()
}

// Subscribe registers fn for every published change. The returned function
// removes it.
func (s *Service) Subscribe(fn func(Settings)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Service) publish(st Settings) bool {
	old := s.current.Load()
	if old != nil && *old == st {
		return false
	}
	s.current.Store(&st)

	s.mu.Lock()
	fns := make([]func(Settings), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	logger.DebugTagf("settings", "publishing settings change to %d subscriber(s)", len(fns))
	for _, fn := range fns {
		fn(st)
	}
	return true
}

// Reload re-reads the file and publishes it if the value changed. A
// malformed file publishes the defaults.
func (s *Service) Reload() (bool, error) {
	s.mu.Lock()
	s.stamp = stampOf(s.path)
	s.mu.Unlock()

	st, err := Load(s.path)
	if err != nil {
		logger.Warnf("settings: %v; using defaults", err)
	}
	return s.publish(st), err
}

// checkModified reloads only when the file's stamp moved.
func (s *Service) checkModified() {
	now := stampOf(s.path)
	s.mu.Lock()
	same := now == s.stamp
	s.mu.Unlock()
	if same {
		return
	}
	if changed, _ := s.Reload(); changed {
		logger.Infof("settings reloaded from %s", s.path)
	}
}

// Start begins watching the file until ctx ends or Close is called. Notify
// mode falls back to polling when a watcher cannot be set up.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	if s.opts.Mode == ModeNotify {
		w, err := s.newWatcher()
		if err == nil {
			go s.watch(ctx, w)
			return nil
		}
		logger.Warnf("settings: file notifications unavailable (%v), polling every %s", err, s.opts.Interval)
	}
	go s.poll(ctx)
	return nil
}

func (s *Service) poll(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkModified()
		}
	}
}

func (s *Service) newWatcher() (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// editors replace files on save, so the directory is watched
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	return w, nil
}

func (s *Service) watch(ctx context.Context, w *fsnotify.Watcher) {
	defer close(s.done)
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				s.checkModified()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warnf("settings watcher: %v", err)
		}
	}
}

// Close stops watching and waits for the watcher goroutine to exit.
func (s *Service) Close() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
