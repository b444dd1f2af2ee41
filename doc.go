// Package vfs implements a Virtual File System: an in-memory mirror of a
// set of on-disk directory trees, kept current by a background watcher
// and able to hold unsaved editor overlays that take precedence over
// whatever is on disk.
//
// A Vfs is built from a set of roots (govfs/roots.RootEntry), each with
// its own Filter controlling which files and subdirectories are
// included. Once built, a Vfs asynchronously scans every root and keeps
// watching it (unless watching is disabled via config.Config); the host
// application drains TaskResults from the channel New returns and feeds
// them to HandleTask on its own goroutine, which is the only goroutine
// allowed to call any other Vfs method. This is deliberate: the Vfs
// itself does no internal locking, trading flexibility for the
// single-owner-thread invariant the underlying I/O Worker and Watcher
// Bridge are built around.
//
// Overlays (AddFileOverlay / ChangeFileOverlay / RemoveFileOverlay)
// represent unsaved editor buffers. Once a file is overlayed, disk
// updates reported by the Watcher Bridge are ignored for it — only the
// overlay methods, or removing the overlay to reveal disk content again,
// can change its text. See govfs/roots, govfs/normalize, govfs/watch,
// and govfs/ioworker for the components a Vfs is assembled from.
package vfs
