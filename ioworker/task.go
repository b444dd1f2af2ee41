package ioworker

import "govfs/roots"

// AddRootTask instructs the worker to recursively scan a root and report
// its contents as a BulkLoadRoot. It is the only task the caller ever
// submits; everything else (single-file changes) arrives as a
// watch.Event, either on the Watcher Bridge's event channel or through
// Worker.Notify.
type AddRootTask struct {
	Root roots.RootID
}

// Subscriber is the subset of the Watcher Bridge the worker needs:
// subscribing a freshly-discovered directory so future changes beneath
// it are observed. A nil Subscriber means watching is disabled (the
// worker still scans and reads, it just never subscribes anything).
type Subscriber interface {
	Watch(dir string) error
}
