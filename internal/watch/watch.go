// Package watch reports when a model file changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reload asks the viewer to load Path again.
type Reload struct {
	Path string
	Op   fsnotify.Op // last operation seen before the debounce fired
}

// Watcher coalesces bursts of file events into single Reload notifications.
type Watcher struct {
	w     *fsnotify.Watcher
	path  string
	delay time.Duration

	evC  chan Reload
	erC  chan error
	done chan struct{}
	once sync.Once
}

// New watches path. The parent directory is watched so editors that save by
// renaming a temporary file over path are still seen. A Reload is sent once
// no event has arrived for delay.
func New(path string, delay time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	fw := &Watcher{
		w:     w,
		path:  abs,
		delay: delay,
		evC:   make(chan Reload, 1),
		erC:   make(chan error, 1),
		done:  make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.evC)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending Reload
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-fw.done:
			return

		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			pending = Reload{Path: fw.path, Op: ev.Op}
			if timer == nil {
				timer = time.NewTimer(fw.delay)
			} else {
				timer.Reset(fw.delay)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			// A reload already queued covers this one.
			select {
			case fw.evC <- pending:
			default:
			}

		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

// Path returns the absolute path being watched.
func (fw *Watcher) Path() string { return fw.path }

// Events delivers debounced reload requests. It is closed by Close.
func (fw *Watcher) Events() <-chan Reload { return fw.evC }

// Errors delivers watcher errors. Errors arriving while one is pending are
// dropped.
func (fw *Watcher) Errors() <-chan error { return fw.erC }

// Close stops watching. It is safe to call more than once.
func (fw *Watcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.w.Close()
	})
	return err
}
