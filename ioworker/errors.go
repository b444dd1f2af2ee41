package ioworker

import "errors"

// ErrWatcherDied is wrapped into the panic raised when the watcher
// event channel closes while the worker is still accepting tasks —
// i.e. the Watcher Bridge died without the controller asking for
// shutdown. Per the error taxonomy this is fatal: the worker cannot
// continue to serve its single-reader-of-disk-state role without it, so
// it fails fast rather than silently degrading.
var ErrWatcherDied = errors.New("ioworker: watcher bridge event channel closed unexpectedly")
