// Package roots implements the Root Registry: the set of configured root
// directories, their filters, and the nesting-exclusion bookkeeping that
// keeps a file from being claimed by more than one root.
//
// This is a close port of original ra_vfs's roots.rs: roots are sorted by
// path length descending so the most specific root is tried first, and
// each root's excluded_dirs is computed from every more-specific root
// that was already placed ahead of it, so a nested root's files are never
// also claimed by its parent.
package roots

import (
	"path/filepath"
	"sort"
	"strings"
)

// RootID identifies a configured root. IDs are dense, zero-based, and
// assigned in registry order; they are never reused once a Registry is
// built (a Registry is immutable after New).
type RootID uint32

// RootEntry identifies a root directory together with the Filter applied
// to files and directories beneath it.
type RootEntry struct {
	Path   string
	Filter Filter
}

type rootData struct {
	entry         RootEntry
	canonicalPath string // "" if identical to entry.Path
	excludedDirs  []string
}

// Registry holds an immutable, ordered set of roots built from a list of
// RootEntry values.
type Registry struct {
	roots []rootData
}

// New builds a Registry from entries. Entries are sorted by path length
// descending (so more deeply nested roots resolve before their
// ancestors) and deduplicated by path. Each root's excluded_dirs is
// derived from every more-specific root already placed ahead of it in
// that order, so files under a nested root are never double-claimed by
// the outer one.
func New(entries []RootEntry) *Registry {
	sorted := make([]RootEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Path) > len(sorted[j].Path)
	})

	seen := make(map[string]bool, len(sorted))
	deduped := sorted[:0:0]
	for _, e := range sorted {
		if seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		deduped = append(deduped, e)
	}
	sorted = deduped

	data := make([]rootData, len(sorted))
	for i, entry := range sorted {
		var excluded []string
		for _, prev := range sorted[:i] {
			if rel, ok := relPath(entry.Path, prev.Path); ok {
				excluded = append(excluded, rel)
			}
		}
		data[i] = newRootData(entry, excluded)
	}
	return &Registry{roots: data}
}

func newRootData(entry RootEntry, excludedDirs []string) rootData {
	canonical := ""
	if abs, err := filepath.EvalSymlinks(entry.Path); err == nil && abs != entry.Path {
		canonical = abs
	}
	return rootData{entry: entry, canonicalPath: canonical, excludedDirs: excludedDirs}
}

// Len returns the number of roots in the registry.
func (r *Registry) Len() int { return len(r.roots) }

// Path returns the configured path for id.
func (r *Registry) Path(id RootID) string {
	return r.roots[id].entry.Path
}

// Filter returns the Filter configured for id.
func (r *Registry) Filter(id RootID) Filter {
	return r.roots[id].entry.Filter
}

// IDs returns every RootID in registry order (most specific first).
func (r *Registry) IDs() []RootID {
	ids := make([]RootID, len(r.roots))
	for i := range r.roots {
		ids[i] = RootID(i)
	}
	return ids
}

// Find resolves an absolute filesystem path against every configured
// root, trying the most specific root first, and returns the owning
// root's id together with the root-relative, slash-separated path. The
// second return value is false if path does not belong to any configured
// root, is excluded by a more-specific nested root, or is rejected by the
// owning root's Filter.
func (r *Registry) Find(path string, expected FileType) (RootID, string, bool) {
	for i := range r.roots {
		id := RootID(i)
		if rel, ok := r.Contains(id, path, expected); ok {
			return id, rel, true
		}
	}
	return 0, "", false
}

// Contains reports whether path belongs to root id, returning the
// root-relative path if so.
func (r *Registry) Contains(id RootID, path string, expected FileType) (string, bool) {
	data := &r.roots[id]
	if rel, ok := toRelativePath(data.entry.Path, path, data, expected); ok {
		return rel, true
	}
	if data.canonicalPath != "" {
		if rel, ok := toRelativePath(data.canonicalPath, path, data, expected); ok {
			return rel, true
		}
	}
	return "", false
}

func (d *rootData) isIncluded(relPath string, expected FileType) bool {
	for _, ex := range d.excludedDirs {
		if ex == relPath || strings.HasPrefix(relPath, ex+"/") {
			return false
		}
	}

	for parent, ok := relParent(relPath); ok; parent, ok = relParent(parent) {
		if !d.entry.Filter.IncludeDir(parent) {
			return false
		}
	}

	if expected == File {
		return d.entry.Filter.IncludeFile(relPath)
	}
	return d.entry.Filter.IncludeDir(relPath)
}

// relPath returns path relative to base, slash-separated, or false if
// path does not lie beneath base.
func relPath(base, path string) (string, bool) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// relParent returns the slash-separated parent of a root-relative path,
// or false if relPath is already at the root (no parent to gate on).
func relParent(relPath string) (string, bool) {
	idx := strings.LastIndexByte(relPath, '/')
	if idx < 0 {
		return "", false
	}
	return relPath[:idx], true
}

// toRelativePath computes path relative to base and, unless it names the
// root itself (an empty relative path), applies data's filter.
func toRelativePath(base, path string, data *rootData, expected FileType) (string, bool) {
	rel, ok := relPath(base, path)
	if !ok {
		return "", false
	}
	if rel == "" {
		return rel, true
	}
	if data.isIncluded(rel, expected) {
		return rel, true
	}
	return "", false
}
