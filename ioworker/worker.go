// Package ioworker implements the I/O Worker: the single goroutine that
// reads file contents from disk, whether driven by an AddRootTask from
// the controller or by an event from the Watcher Bridge. Being the sole
// reader is what guarantees a monotonic-per-file freshness property: two
// reads of the same file are never observed out of order.
//
// This generalizes ra_vfs's io.rs worker thread (Task/TaskResult
// vocabulary, AddRoot bulk-load, per-event SingleFile reporting) onto Go
// channels and a native select loop in place of crossbeam_channel's
// select! macro.
package ioworker

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"govfs/logging"
	"govfs/normalize"
	"govfs/roots"
	"govfs/watch"
)

// Worker owns the single goroutine that touches the filesystem on
// behalf of the VFS. Construct with Start; shut down with Close.
type Worker struct {
	registry   *roots.Registry
	events     <-chan watch.Event
	subscriber Subscriber
	onResult   func(TaskResult)
	log        *logging.Logger

	tasks  chan AddRootTask
	notify chan watch.Event
	done   chan struct{}
}

// Start spawns the worker goroutine. events may be nil when watching is
// disabled (config.Watch == false); subscriber may be nil for the same
// reason. onResult is invoked synchronously from the worker goroutine
// for every produced TaskResult — the controller is expected to do
// nothing more than update its own state and return quickly.
func Start(registry *roots.Registry, events <-chan watch.Event, subscriber Subscriber, onResult func(TaskResult), log *logging.Logger) *Worker {
	w := &Worker{
		registry:   registry,
		events:     events,
		subscriber: subscriber,
		onResult:   onResult,
		log:        log,
		tasks:      make(chan AddRootTask),
		notify:     make(chan watch.Event),
		done:       make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enqueues an AddRootTask. The caller (the VFS Controller) is the
// single owner of the worker and must not call Submit concurrently with
// Close.
func (w *Worker) Submit(t AddRootTask) {
	w.tasks <- t
}

// Notify enqueues a synthetic event, read by the same single goroutine
// that reads real Watcher Bridge events so it cannot reorder against
// them. The VFS Controller uses this for NotifyChanged, the explicit
// reconciliation path spec.md §6 requires when watching is disabled.
// Like Submit, it must not be called concurrently with Close.
func (w *Worker) Notify(ev watch.Event) {
	w.notify <- ev
}

// Close signals the worker to shut down by closing the task channel —
// the worker's own select loop is the sole reader, so it notices
// immediately. From that point on the Watcher Bridge's event channel is
// drained, not processed. If watching is enabled, the caller must also
// close the Watcher Bridge so its event channel closes and the drain
// phase can complete; Close blocks until it does. The event channel must
// close only after the task channel has: a close the worker observes
// while it is still accepting tasks is treated as the bridge dying (see
// ErrWatcherDied). This mirrors the teardown order the worker
// relies on: the controller-to-worker channel closes first, and watcher
// events are drained last.
func (w *Worker) Close() {
	close(w.tasks)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	shuttingDown := false
	for {
		if shuttingDown {
			if w.events == nil {
				return
			}
			// Drain pending events; we are no longer interested in them.
			if _, ok := <-w.events; !ok {
				return
			}
			continue
		}
		select {
		case t, ok := <-w.tasks:
			if !ok {
				shuttingDown = true
				continue
			}
			w.handleAddRoot(t.Root)
		case ev, ok := <-w.events:
			if !ok {
				panic(errors.Wrap(ErrWatcherDied, "io worker cannot continue without the watcher bridge"))
			}
			w.handleEvent(ev)
		case ev := <-w.notify:
			w.handleEvent(ev)
		}
	}
}

func (w *Worker) handleAddRoot(root roots.RootID) {
	rootPath := w.registry.Path(root)
	id := uuid.New()
	w.log.Debugf("[%s] loading %s ...", id, rootPath)

	rels := w.scanRelPaths(root, rootPath)
	files := make([]FileRead, 0, len(rels))
	var totalBytes uint64
	for _, rel := range rels {
		abs := filepath.Join(rootPath, filepath.FromSlash(rel))
		text, le, ok := w.readText(abs)
		if !ok {
			continue
		}
		files = append(files, FileRead{Path: rel, Text: text, LineEndings: le})
		totalBytes += uint64(len(text))
	}

	w.log.Debugf("[%s] ... loaded %s (%d files, %s)", id, rootPath, len(files), humanize.Bytes(totalBytes))
	w.onResult(BulkLoadRoot{Root: root, Files: files})
}

func (w *Worker) handleEvent(ev watch.Event) {
	// Mirrors the original's classification: a path that no longer
	// exists (or fails to stat) is treated as a directory, since a
	// removed file can no longer be confirmed to have been one.
	ft := roots.Dir
	if fi, err := os.Stat(ev.Path); err == nil && !fi.IsDir() {
		ft = roots.File
	}

	root, relPath, ok := w.registry.Find(ev.Path, ft)
	if !ok {
		// Outside every configured root, or rejected by a Filter: a
		// benign classification gap, dropped silently.
		return
	}

	if ev.Kind == watch.Create && ft == roots.Dir {
		for _, rel := range w.scanRelPaths(root, ev.Path) {
			abs := filepath.Join(w.registry.Path(root), filepath.FromSlash(rel))
			w.emitSingleFile(root, rel, abs)
		}
		return
	}

	w.emitSingleFile(root, relPath, ev.Path)
}

func (w *Worker) emitSingleFile(root roots.RootID, relPath, absPath string) {
	text, le, ok := w.readText(absPath)
	var textPtr *string
	if ok {
		textPtr = &text
	} else {
		le = normalize.Unix
	}
	w.onResult(SingleFile{Root: root, Path: relPath, Text: textPtr, LineEndings: le})
}

// scanRelPaths recursively walks dir, subscribing every directory it
// descends into (when a subscriber is configured) and returning the
// root-relative path of every included file. Directories a Filter
// excludes are never descended into, matching the original's
// filter_entry-gated WalkDir and, transitively, the parent-gating
// invariant: nothing beneath an excluded directory is ever visited.
func (w *Worker) scanRelPaths(root roots.RootID, dir string) []string {
	var rels []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.log.Warnf("scan: skipping %s: %v", path, err)
			return nil
		}

		ft := roots.File
		if d.IsDir() {
			ft = roots.Dir
		}
		rel, ok := w.registry.Contains(root, path, ft)
		if !ok {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if w.subscriber != nil {
				if err := w.subscriber.Watch(path); err != nil {
					w.log.Warnf("could not watch %s: %v", path, err)
				}
			}
			return nil
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		w.log.Warnf("scan of %s failed: %v", dir, err)
	}
	return rels
}

func (w *Worker) readText(path string) (string, normalize.LineEndings, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		w.log.Warnf("failed to read %s: %v", path, err)
		return "", normalize.Unix, false
	}
	text, le := normalize.Normalize(string(raw))
	return text, le, true
}
