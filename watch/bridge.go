// Package watch implements the Watcher Bridge: it owns the platform
// filesystem watcher, reclassifies raw notifications into the Create/
// Write/Remove vocabulary the I/O Worker understands, and debounces
// bursts of events on the same path into a single flush.
//
// This is a generalization of the teacher's handlers/watcher.go
// (recursive fsnotify subscription, dynamic re-subscription of newly
// created directories) combined with the reclassification and 250ms
// debounce rules from ra_vfs's io.rs convert_notify_event/WATCHER_DELAY.
package watch

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"govfs/logging"
)

// Bridge watches a set of directories with fsnotify and translates raw
// platform events into a debounced stream of Events. It is the sole
// producer on its Events channel; the I/O Worker is the sole consumer,
// preserving the single-reader-of-disk-state invariant by never touching
// the filesystem itself beyond a Stat to re-classify a Create.
type Bridge struct {
	watcher  *fsnotify.Watcher
	log      *logging.Logger
	debounce time.Duration
	limiter  *rate.Limiter

	events chan Event
	errors chan error

	mu      sync.Mutex
	pending map[string]*pendingChange
	stopped bool
}

type pendingChange struct {
	kind  Kind
	timer *time.Timer
}

// New creates a Bridge with the given debounce window. A burst of events
// on the same path within that window collapses into a single flushed
// Event carrying the last kind observed.
func New(debounce time.Duration, log *logging.Logger) (*Bridge, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		watcher:  w,
		log:      log,
		debounce: debounce,
		// Caps the rate of flushed events reaching the I/O Worker so a
		// pathological burst (e.g. a large git checkout) cannot starve
		// the worker's single reader thread; the burst itself is still
		// fully coalesced per path by the debounce window above this.
		limiter: rate.NewLimiter(rate.Limit(500), 500),
		events:  make(chan Event, 64),
		errors:  make(chan error, 16),
		pending: make(map[string]*pendingChange),
	}
	go b.run()
	return b, nil
}

// Watch subscribes dir to the underlying platform watcher. Subscriptions
// are non-recursive; recursive coverage is the caller's responsibility —
// the I/O Worker calls Watch for every directory it discovers during a
// scan, and the Bridge itself calls Watch again for any directory
// reported via a Create event.
func (b *Bridge) Watch(dir string) error {
	return b.watcher.Add(dir)
}

// Events returns the channel of debounced, reclassified events. It is
// closed once the Bridge has fully shut down.
func (b *Bridge) Events() <-chan Event { return b.events }

// Errors returns the channel of watcher errors. These are transient I/O
// per the error taxonomy: logged by the caller, never fatal on their own.
// It is closed once the Bridge has fully shut down.
func (b *Bridge) Errors() <-chan error { return b.errors }

// Close stops the underlying platform watcher. The Bridge finishes
// shutting down asynchronously: Events and Errors are closed once the
// run loop observes the watcher's own channels close.
func (b *Bridge) Close() error {
	return b.watcher.Close()
}

func (b *Bridge) run() {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				b.shutdown()
				return
			}
			b.handle(ev)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				b.shutdown()
				return
			}
			select {
			case b.errors <- err:
			default:
				b.log.Warnf("watcher error dropped, errors channel full: %v", err)
			}
		}
	}
}

func (b *Bridge) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	for _, pc := range b.pending {
		pc.timer.Stop()
	}
	b.pending = nil
	close(b.events)
	close(b.errors)
}

// handle reclassifies a single raw fsnotify event per the taxonomy:
// Chmod is a benign classification gap and is dropped silently; Rename
// is split by emitting only a Remove for the old path, relying on the
// platform to deliver a separate Create for the new one.
func (b *Bridge) handle(ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Chmod):
		return
	case ev.Has(fsnotify.Create):
		b.schedule(ev.Name, Create)
	case ev.Has(fsnotify.Write):
		b.schedule(ev.Name, Write)
	case ev.Has(fsnotify.Remove):
		b.schedule(ev.Name, Remove)
	case ev.Has(fsnotify.Rename):
		b.schedule(ev.Name, Remove)
	}
}

func (b *Bridge) schedule(path string, kind Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}

	if pc, ok := b.pending[path]; ok {
		pc.kind = kind
		pc.timer.Reset(b.debounce)
		return
	}
	pc := &pendingChange{kind: kind}
	pc.timer = time.AfterFunc(b.debounce, func() { b.flush(path) })
	b.pending[path] = pc
}

func (b *Bridge) flush(path string) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	pc, ok := b.pending[path]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.pending, path)
	b.mu.Unlock()

	if err := b.limiter.Wait(context.Background()); err != nil {
		return
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.events <- Event{Path: path, Kind: pc.kind}
	b.mu.Unlock()

	if pc.kind == Create {
		b.watchIfDir(path)
	}
}

func (b *Bridge) watchIfDir(path string) {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return
	}
	if err := b.Watch(path); err != nil {
		b.log.Warnf("could not watch new directory %s: %v", path, err)
	}
}
