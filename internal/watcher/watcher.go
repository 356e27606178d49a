// Package watcher reports changes to individual document files.
//
// Files are watched through their parent directory so that editors (and
// docfile.Write) replacing a file by rename keep being tracked. Rapid
// changes to the same file are coalesced into one event after a debounce
// delay.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file was created or moved into place.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a debounced change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op holds every operation seen during the debounce window.
	Op Op

	// Timestamp is when the last operation occurred.
	Timestamp time.Time
}

// Exists reports whether the file is still present after the event.
func (e Event) Exists() bool {
	_, err := os.Stat(e.Path)
	return err == nil
}

// DefaultDebounceDelay is the delay used when none is configured.
const DefaultDebounceDelay = 100 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithBufferSize sets the event channel size.
func WithBufferSize(size int) Option {
	return func(w *Watcher) {
		if size > 0 {
			w.bufSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// pendingEvent is an event waiting out the debounce delay. Only the timer
// started with the current seq may fire it.
type pendingEvent struct {
	event Event
	timer *time.Timer
	seq   uint64
}

// Watcher watches a set of files.
type Watcher struct {
	mu sync.Mutex

	fsw     *fsnotify.Watcher
	delay   time.Duration
	bufSize int
	logger  *slog.Logger

	// files maps watched file paths to their directory; dirs counts the
	// watched files per directory.
	files map[string]string
	dirs  map[string]int

	pending map[string]*pendingEvent
	seq     uint64
	events  chan Event
	errors  chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New creates a watcher.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		delay:   DefaultDebounceDelay,
		bufSize: 100,
		logger:  slog.Default(),
		files:   make(map[string]string),
		dirs:    make(map[string]int),
		pending: make(map[string]*pendingEvent),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.events = make(chan Event, w.bufSize)
	w.errors = make(chan error, w.bufSize)

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Add starts watching the file at path.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	if _, ok := w.files[abs]; ok {
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = dir
	return nil
}

// Remove stops watching the file at path.
func (w *Watcher) Remove(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir, ok := w.files[abs]
	if !ok {
		return ErrNotWatching
	}

	delete(w.files, abs)
	if p, ok := w.pending[abs]; ok {
		p.timer.Stop()
		delete(w.pending, abs)
	}
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// Files returns the watched file paths, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Events returns the debounced event channel.
// The channel is closed when the watcher is closed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
// The channel is closed when the watcher is closed.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending events are discarded.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()

	// Timers stopped above may already be running fireEvent; it takes mu
	// and sees closed before sending.
	w.mu.Lock()
	close(w.events)
	close(w.errors)
	w.mu.Unlock()
	return err
}

// Run calls handle for every event until ctx is cancelled or the watcher
// is closed. Watcher errors are logged.
func (w *Watcher) Run(ctx context.Context, handle func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.events:
			if !ok {
				return ErrWatcherClosed
			}
			handle(event)
		case err, ok := <-w.errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

func (w *Watcher) handleEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if _, ok := w.files[path]; !ok {
		return
	}

	now := time.Now()
	p, ok := w.pending[path]
	if ok {
		p.event.Op |= op
		p.event.Timestamp = now
		p.timer.Stop()
	} else {
		p = &pendingEvent{event: Event{Path: path, Op: op, Timestamp: now}}
		w.pending[path] = p
	}
	w.seq++
	seq := w.seq
	p.seq = seq
	p.timer = time.AfterFunc(w.delay, func() { w.fireEvent(path, seq) })
}

// fireEvent sends the pending event for path if seq is still current.
// A timer that fired while handleEvent was re-arming it carries a stale seq.
func (w *Watcher) fireEvent(path string, seq uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[path]
	if !ok || w.closed || p.seq != seq {
		return
	}
	delete(w.pending, path)

	select {
	case w.events <- p.event:
		w.logger.Debug("file changed", "path", path, "op", p.event.Op)
	default:
		w.logger.Warn("event channel full, dropping event", "path", path)
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// convertOp converts fsnotify.Op to Op. Chmod is ignored.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
