package highlight

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// DebounceDuration is how long edits must pause before a re-highlight starts.
const DebounceDuration = 65 * time.Millisecond

// Snapshot is the document state a background analysis runs over.
type Snapshot struct {
	Source   []byte
	Language lang.Language
	Semantic bool
}

// Manager runs debounced background analyses. Results are handed to apply,
// which is responsible for marshalling them onto the UI thread.
type Manager struct {
	highlighter *Highlighter
	snapshot    func() Snapshot
	apply       func(*Analysis)
	delay       time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	cancelFunc context.CancelFunc
	isRunning  bool
	dirty      bool
	closed     bool
}

// NewManager creates a manager. A zero delay uses DebounceDuration.
func NewManager(h *Highlighter, delay time.Duration, snapshot func() Snapshot, apply func(*Analysis)) *Manager {
	if delay <= 0 {
		delay = DebounceDuration
	}
	return &Manager{highlighter: h, snapshot: snapshot, apply: apply, delay: delay}
}

// Request schedules a re-highlight, restarting the debounce window.
func (m *Manager) Request() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.dirty = true
	if m.timer != nil {
		m.timer.Reset(m.delay)
		return
	}
	m.timer = time.AfterFunc(m.delay, m.run)
}

func (m *Manager) run() {
	m.mu.Lock()
	m.timer = nil
	if m.closed || !m.dirty {
		m.mu.Unlock()
		return
	}
	if m.isRunning {
		// the running task re-checks dirty when it finishes
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.dirty = false
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFunc = cancel
	snap := m.snapshot()
	m.mu.Unlock()

	go func() {
		defer cancel()
		a, err := m.highlighter.Analyze(ctx, snap.Source, snap.Language, snap.Semantic)

		m.mu.Lock()
		m.isRunning = false
		m.cancelFunc = nil
		again := m.dirty && !m.closed
		closed := m.closed
		m.mu.Unlock()

		switch {
		case errors.Is(err, context.Canceled) || closed:
			logger.DebugTagf("highlight", "highlight task cancelled")
		case err != nil:
			logger.Warnf("background highlighting failed: %v", err)
		default:
			m.apply(a)
		}
		if again {
			m.Request()
		}
	}()
}

// Shutdown cancels any pending or running task. Further requests are ignored.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.cancelFunc != nil {
		m.cancelFunc()
		m.cancelFunc = nil
	}
}
