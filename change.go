package vfs

import "govfs/roots"

// Change is one entry in the append-only Change Log a Vfs accumulates
// between calls to CommitChanges. Changes are not compacted: if a file
// changes three times before CommitChanges is called, three ChangeFile
// entries are returned, in the order they happened.
type Change interface {
	isChange()
}

// AddedFile is one file discovered while processing an AddRootChange.
type AddedFile struct {
	File FileID
	Path string
	Text string
}

// AddRootChange is emitted once a root's initial scan (or a Rescan)
// completes. Files already tracked (e.g. because they were overlayed or
// loaded on demand before the scan finished) keep their existing FileID
// and in-memory text rather than being reported twice.
type AddRootChange struct {
	Root  roots.RootID
	Files []AddedFile
}

func (AddRootChange) isChange() {}

// AddFileChange is emitted when a single new file enters the Vfs,
// whether because the host called Load, created an overlay for a path
// with no backing file yet, or the Watcher Bridge reported a new file.
type AddFileChange struct {
	Root roots.RootID
	File FileID
	Path string
	Text string
}

func (AddFileChange) isChange() {}

// RemoveFileChange is emitted when a file leaves the Vfs.
type RemoveFileChange struct {
	Root roots.RootID
	File FileID
	Path string
}

func (RemoveFileChange) isChange() {}

// ChangeFileChange is emitted when an existing file's text changes.
type ChangeFileChange struct {
	File FileID
	Text string
}

func (ChangeFileChange) isChange() {}
