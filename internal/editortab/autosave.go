package editortab

import (
	"sync"
	"time"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/logger"
)

// autoSaver periodically saves a modified tab.
type autoSaver struct {
	name     string
	interval time.Duration
	modified func() bool
	save     func()

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func newAutoSaver(name string, interval time.Duration, modified func() bool, save func()) *autoSaver {
	return &autoSaver{name: name, interval: interval, modified: modified, save: save}
}

func (a *autoSaver) start() {
	a.stopChan = make(chan struct{})
	a.wg.Add(1)
	go a.saverLoop()
	logger.DebugTagf("autosave", "%s: saver started, interval %v", a.name, a.interval)
}

// stop signals the saver goroutine and waits for it.
func (a *autoSaver) stop() {
	if a.stopChan == nil {
		return
	}
	close(a.stopChan)
	a.wg.Wait()
	a.stopChan = nil
	logger.DebugTagf("autosave", "%s: saver stopped", a.name)
}

func (a *autoSaver) saverLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if a.modified() {
				logger.DebugTagf("autosave", "%s: saving modified buffer", a.name)
				a.save()
			}
		case <-a.stopChan:
			return
		}
	}
}
