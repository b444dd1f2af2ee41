package ioworker

import (
	"govfs/normalize"
	"govfs/roots"
)

// TaskResult is the sum type the worker hands back to the VFS Controller.
// Both variants implement this marker method; the controller type-
// switches on the concrete type.
type TaskResult interface {
	isTaskResult()
}

// FileRead is a single file discovered during a bulk scan.
type FileRead struct {
	Path        string // root-relative, slash-separated
	Text        string
	LineEndings normalize.LineEndings
}

// BulkLoadRoot is emitted once per AddRootTask, after the worker has
// recursively scanned and read every included file beneath the root.
type BulkLoadRoot struct {
	Root  roots.RootID
	Files []FileRead
}

func (BulkLoadRoot) isTaskResult() {}

// SingleFile is emitted for a single changed path. By design it does not
// distinguish between create/write/remove: it reports the *current*
// state of the file (Text is nil if the path can no longer be read),
// guaranteeing that in a quiescent state the sum of all SingleFile
// results matches the current state of the filesystem, while allowing
// intermediate events during a burst to be skipped.
type SingleFile struct {
	Root        roots.RootID
	Path        string // root-relative, slash-separated
	Text        *string
	LineEndings normalize.LineEndings
}

func (SingleFile) isTaskResult() {}
