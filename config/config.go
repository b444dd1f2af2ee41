// Package config defines the construction-time options for a VFS. The
// teacher's config package parses command-line flags and environment
// variables; this spec has no CLI (spec.md §6 excludes one), so this
// package keeps only the validate-and-default constructor shape and
// drops the flag/env parsing entirely.
package config

import (
	"fmt"
	"time"
)

// DefaultDebounce is the debounce window applied to coalesced watcher
// events when Config.Debounce is left at its zero value.
const DefaultDebounce = 250 * time.Millisecond

// Config holds the knobs a VFS needs at construction time.
type Config struct {
	// Debounce is how long the Watcher Bridge waits after the last event
	// on a path before flushing it to the I/O Worker. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// Watch enables the Watcher Bridge. When false, the VFS only
	// reconciles on explicit Load, NotifyChanged and Rescan calls; no
	// background filesystem watching occurs.
	Watch bool
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Config) { c.Debounce = d }
}

// WithWatch enables or disables the Watcher Bridge.
func WithWatch(enabled bool) Option {
	return func(c *Config) { c.Watch = enabled }
}

// New builds a Config, applying opts over documented defaults and
// validating the result. This mirrors the teacher's config.Load:
// zero-valued fields fall back to defaults, and invalid combinations are
// returned as a wrapped error rather than panicking.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		Debounce: DefaultDebounce,
		Watch:    true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.Debounce < 0 {
		return nil, fmt.Errorf("config: debounce must not be negative, got %s", c.Debounce)
	}
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	}

	return c, nil
}
