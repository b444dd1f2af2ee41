package vfs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"govfs/config"
	"govfs/ioworker"
	"govfs/logging"
	"govfs/normalize"
	"govfs/roots"
	"govfs/watch"
)

// FileID identifies a file tracked by a Vfs. IDs are dense, zero-based,
// assigned in the order files are first seen, and never reused: removing
// a file tombstones its slot (clears its text and path) rather than
// freeing the ID for reuse.
type FileID uint32

type fileData struct {
	root        roots.RootID
	path        string
	isOverlayed bool
	text        string
	lineEndings normalize.LineEndings
}

// Vfs is the in-memory mirror of a set of on-disk directory trees. See
// the package doc for the single-owner-thread contract every method
// other than Close assumes.
type Vfs struct {
	registry *roots.Registry
	log      *logging.Logger

	files      []fileData
	root2files map[roots.RootID]map[FileID]struct{}

	pendingChanges []Change

	worker *ioworker.Worker
	bridge *watch.Bridge
}

// New builds a Vfs over entries and starts its background components:
// the I/O Worker always, and the Watcher Bridge when cfg.Watch is true.
// It returns the Vfs together with the channel of TaskResults the host
// must drain and pass to HandleTask. Close does not close that channel;
// once Close has returned, no further results are sent on it.
func New(entries []roots.RootEntry, cfg *config.Config, log *logging.Logger) (*Vfs, <-chan ioworker.TaskResult, error) {
	if log == nil {
		log = logging.Default()
	}
	registry := roots.New(entries)

	var bridge *watch.Bridge
	var events <-chan watch.Event
	var subscriber ioworker.Subscriber
	if cfg.Watch {
		b, err := watch.New(cfg.Debounce, log.Sublogger("watcher"))
		if err != nil {
			return nil, nil, errors.Wrap(err, "vfs: failed to start watcher bridge")
		}
		bridge = b
		events = b.Events()
		subscriber = b

		go func() {
			for err := range b.Errors() {
				log.Warnf("watcher: %v", err)
			}
		}()
	}

	results := make(chan ioworker.TaskResult, 64)
	worker := ioworker.Start(registry, events, subscriber, func(r ioworker.TaskResult) {
		results <- r
	}, log.Sublogger("ioworker"))

	root2files := make(map[roots.RootID]map[FileID]struct{}, registry.Len())
	for _, id := range registry.IDs() {
		root2files[id] = make(map[FileID]struct{})
		worker.Submit(ioworker.AddRootTask{Root: id})
	}

	v := &Vfs{
		registry:   registry,
		log:        log,
		root2files: root2files,
		worker:     worker,
		bridge:     bridge,
	}
	return v, results, nil
}

// RootToPath returns the configured path of root.
func (v *Vfs) RootToPath(root roots.RootID) string {
	return v.registry.Path(root)
}

// PathToFile returns the FileID tracking path, if any file at that path
// has been added to the Vfs yet (via Load, an overlay, or a completed
// scan).
func (v *Vfs) PathToFile(path string) (FileID, bool) {
	_, _, file, ok := v.findRoot(path)
	if !ok || file == nil {
		return 0, false
	}
	return *file, true
}

// FileToPath returns the absolute filesystem path backing file.
func (v *Vfs) FileToPath(file FileID) string {
	d := v.file(file)
	return filepath.Join(v.registry.Path(d.root), filepath.FromSlash(d.path))
}

// FileLineEndings reports which line-ending convention file used on disk
// before normalization.
func (v *Vfs) FileLineEndings(file FileID) normalize.LineEndings {
	return v.file(file).lineEndings
}

// NRoots returns the number of configured roots.
func (v *Vfs) NRoots() int {
	return v.registry.Len()
}

// Load returns the FileID for path, reading it from disk and adding it
// to the Vfs (recording an AddFileChange) if it is not already tracked.
// It returns false if path does not belong to any configured root or is
// rejected by that root's Filter.
func (v *Vfs) Load(path string) (FileID, bool) {
	root, rel, file, ok := v.findRoot(path)
	if !ok {
		return 0, false
	}
	if file != nil {
		return *file, true
	}

	raw, err := os.ReadFile(path)
	var text string
	if err != nil {
		v.log.Warnf("failed to read file %s: %v", path, err)
	} else {
		text = string(raw)
	}
	text, le := normalize.Normalize(text)

	newFile := v.addFileEvent(root, rel, text, le, false)
	return newFile, true
}

// AddFileOverlay records unsaved editor text for path, adding it to the
// Vfs if it was not already tracked. From this point on, disk updates to
// path are ignored until the overlay is removed.
func (v *Vfs) AddFileOverlay(path string, text string) (FileID, bool) {
	text, le := normalize.Normalize(text)
	root, rel, file, ok := v.findRoot(path)
	if !ok {
		return 0, false
	}
	if file != nil {
		v.changeFileEvent(*file, text, true)
		return *file, true
	}
	return v.addFileEvent(root, rel, text, le, true), true
}

// ChangeFileOverlay updates the unsaved editor text for an already-
// overlayed path. It panics with InvariantViolation if path lies in a
// root but was never added to the Vfs: callers must AddFileOverlay
// first. A path outside every root, or rejected by its root's Filter,
// is ignored.
func (v *Vfs) ChangeFileOverlay(path string, newText string) {
	newText, _ = normalize.Normalize(newText)
	_, _, file, ok := v.findRoot(path)
	if !ok {
		return
	}
	if file == nil {
		panic(newInvariantViolation("change_file_overlay: %q was never added to the vfs", path))
	}
	v.changeFileEvent(*file, newText, true)
}

// RemoveFileOverlay drops the unsaved editor text for path, reverting to
// disk content if the file still exists there, or removing the file
// entirely if it does not. It panics with InvariantViolation if path lies
// in a root but was never added to the Vfs; for a path outside every
// root, or rejected by its root's Filter, it returns false.
func (v *Vfs) RemoveFileOverlay(path string) (FileID, bool) {
	root, rel, file, ok := v.findRoot(path)
	if !ok {
		return 0, false
	}
	if file == nil {
		panic(newInvariantViolation("remove_file_overlay: %q was never added to the vfs", path))
	}

	fullPath := filepath.Join(v.registry.Path(root), filepath.FromSlash(rel))
	if raw, err := os.ReadFile(fullPath); err == nil {
		text, _ := normalize.Normalize(string(raw))
		v.changeFileEvent(*file, text, false)
	} else {
		v.removeFileEvent(root, rel, *file)
	}
	return *file, true
}

// CommitChanges returns every Change accumulated since the last call and
// clears the pending log. Changes are returned in the order they
// happened and are not compacted.
func (v *Vfs) CommitChanges() []Change {
	changes := v.pendingChanges
	v.pendingChanges = nil
	return changes
}

// NotifyChanged synthesizes a Write event for path and hands it to the
// I/O Worker, exactly as if the Watcher Bridge had observed a write
// there. This is the explicit reconciliation path spec.md §6 requires
// when a Vfs is constructed with Watch disabled: the host calls it after
// changing a file out from under the Vfs to force a single-file re-read,
// without the cost of a full Rescan. It returns false if path does not
// belong to any configured root.
func (v *Vfs) NotifyChanged(path string) bool {
	if _, _, ok := v.registry.Find(path, roots.File); !ok {
		if _, _, ok := v.registry.Find(path, roots.Dir); !ok {
			return false
		}
	}
	v.worker.Notify(watch.Event{Path: path, Kind: watch.Write})
	return true
}

// Rescan re-submits every configured root as a fresh AddRootTask. Files
// the scan finds that are not yet tracked are added; files already
// tracked (overlayed or not) keep their FileID and current in-memory
// text, so a rescan never overwrites an overlay's content. A rescan does
// not apply newer disk text to an already-tracked file, and does not
// remove tracked files that are no longer on disk.
func (v *Vfs) Rescan() {
	for _, id := range v.registry.IDs() {
		v.worker.Submit(ioworker.AddRootTask{Root: id})
	}
}

// HandleTask applies a TaskResult produced by the I/O Worker, updating
// the Vfs's state and appending to the pending Change log as needed.
// This is the only place background-thread work is folded into Vfs
// state, and the host must call it from the same goroutine it calls
// every other Vfs method from.
func (v *Vfs) HandleTask(result ioworker.TaskResult) {
	switch r := result.(type) {
	case ioworker.BulkLoadRoot:
		v.handleBulkLoadRoot(r)
	case ioworker.SingleFile:
		v.handleSingleFile(r)
	default:
		panic(newInvariantViolation("handle_task: unrecognized task result %T", result))
	}
}

// Close tears down the background components in the order they require:
// the I/O Worker's task channel closes first, which stops it from
// accepting new AddRootTasks and puts it into drain mode; the Watcher
// Bridge is closed concurrently, which is what lets the worker's drain
// of remaining watcher events finish and the worker's goroutine exit.
func (v *Vfs) Close() {
	bridgeClosed := make(chan struct{})
	go func() {
		if v.bridge != nil {
			if err := v.bridge.Close(); err != nil {
				v.log.Warnf("error closing watcher bridge: %v", err)
			}
		}
		close(bridgeClosed)
	}()
	v.worker.Close()
	<-bridgeClosed
}

func (v *Vfs) handleBulkLoadRoot(r ioworker.BulkLoadRoot) {
	existing := make(map[string]FileID, len(v.root2files[r.Root]))
	for id := range v.root2files[r.Root] {
		existing[v.files[id].path] = id
	}

	curFiles := make([]AddedFile, 0, len(r.Files))
	for _, fr := range r.Files {
		if id, ok := existing[fr.Path]; ok {
			curFiles = append(curFiles, AddedFile{File: id, Path: fr.Path, Text: v.files[id].text})
			continue
		}
		id := v.rawAddFile(r.Root, fr.Path, fr.Text, fr.LineEndings, false)
		curFiles = append(curFiles, AddedFile{File: id, Path: fr.Path, Text: fr.Text})
	}

	v.pendingChanges = append(v.pendingChanges, AddRootChange{Root: r.Root, Files: curFiles})
}

func (v *Vfs) handleSingleFile(r ioworker.SingleFile) {
	existing := v.findFile(r.Root, r.Path)
	if existing != nil && v.files[*existing].isOverlayed {
		// Overlay wins: a disk-driven report for an overlayed file is
		// discarded outright.
		return
	}

	switch {
	case existing != nil && r.Text == nil:
		v.removeFileEvent(r.Root, r.Path, *existing)
	case existing == nil && r.Text != nil:
		v.addFileEvent(r.Root, r.Path, *r.Text, r.LineEndings, false)
	case existing != nil && r.Text != nil:
		if v.files[*existing].text != *r.Text {
			v.changeFileEvent(*existing, *r.Text, false)
		}
	}
}

// addFileEvent, changeFileEvent, and removeFileEvent mutate Vfs state
// via the raw_* helpers below and additionally push a Change.

func (v *Vfs) addFileEvent(root roots.RootID, path, text string, le normalize.LineEndings, overlay bool) FileID {
	file := v.rawAddFile(root, path, text, le, overlay)
	v.pendingChanges = append(v.pendingChanges, AddFileChange{Root: root, File: file, Path: path, Text: text})
	return file
}

func (v *Vfs) changeFileEvent(file FileID, text string, overlay bool) {
	v.rawChangeFile(file, text, overlay)
	v.pendingChanges = append(v.pendingChanges, ChangeFileChange{File: file, Text: text})
}

func (v *Vfs) removeFileEvent(root roots.RootID, path string, file FileID) {
	v.rawRemoveFile(file)
	v.pendingChanges = append(v.pendingChanges, RemoveFileChange{Root: root, File: file, Path: path})
}

// raw_* helpers mutate Vfs state but never push a Change.

func (v *Vfs) rawAddFile(root roots.RootID, path, text string, le normalize.LineEndings, overlayed bool) FileID {
	file := FileID(len(v.files))
	v.files = append(v.files, fileData{root: root, path: path, text: text, lineEndings: le, isOverlayed: overlayed})
	v.root2files[root][file] = struct{}{}
	return file
}

func (v *Vfs) rawChangeFile(file FileID, text string, overlayed bool) {
	d := v.file(file)
	d.text = text
	d.isOverlayed = overlayed
}

func (v *Vfs) rawRemoveFile(file FileID) {
	d := v.file(file)
	root := d.root
	d.text = ""
	d.path = ""
	delete(v.root2files[root], file)
}

func (v *Vfs) findRoot(path string) (roots.RootID, string, *FileID, bool) {
	root, rel, ok := v.registry.Find(path, roots.File)
	if !ok {
		return 0, "", nil, false
	}
	return root, rel, v.findFile(root, rel), true
}

func (v *Vfs) findFile(root roots.RootID, path string) *FileID {
	for id := range v.root2files[root] {
		if v.files[id].path == path {
			f := id
			return &f
		}
	}
	return nil
}

func (v *Vfs) file(id FileID) *fileData {
	return &v.files[id]
}
