// Package watchdir watches a hot folder for settled JSON documents.
package watchdir

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/keyscope/internal/core/logging"
)

const eventBufferSize = 100

// Event describes a JSON file that stopped changing in the watched directory.
type Event struct {
	Path string
	At   time.Time
}

// Watcher emits an Event for every JSON file that settles for the debounce
// delay. Repeated writes to the same file collapse into one event.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	events   chan Event
	log      zerolog.Logger

	mu     sync.Mutex
	closed bool
	timers map[string]*time.Timer // path -> debounce timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for dir. The directory is created if it doesn't exist.
func New(dir string, debounce time.Duration) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:      dir,
		debounce: debounce,
		watcher:  fsw,
		events:   make(chan Event, eventBufferSize),
		log:      logging.Component("watchdir"),
		timers:   make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Events returns the channel settled files are delivered on.
// The channel is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the event channel. Close must be
// called exactly once.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	w.closed = true
	for _, timer := range w.timers {
		timer.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

// run processes filesystem events from fsnotify.
func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("watch error")
		}
	}
}

// handleEvent debounces a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only care about writes/creates/renames (file changes)
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	filename := filepath.Base(event.Name)

	// Ignore non-JSON files, hidden files, and editor temp files
	if !strings.HasSuffix(filename, ".json") ||
		strings.HasPrefix(filename, ".") ||
		strings.HasSuffix(filename, ".tmp") {
		return
	}

	path := event.Name

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.emit(path)
	})
}

// emit delivers a settled file to the consumer. Sends happen under mu so
// Close never races a send against closing the channel.
func (w *Watcher) emit(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	delete(w.timers, path)

	select {
	case w.events <- Event{Path: path, At: time.Now()}:
	default:
		// Channel full, drop event to prevent blocking
	}
}
