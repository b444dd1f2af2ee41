package roots

import "github.com/bmatcuk/doublestar/v4"

// GlobFilter is a Filter backed by doublestar glob patterns: a path is
// included if it matches no dir/file exclude pattern and, when any
// include patterns are given, matches at least one of them.
//
// Patterns are matched against the slash-separated, root-relative path
// (e.g. "src/**/*.go", "node_modules/**", ".git").
type GlobFilter struct {
	DirExcludes  []string
	FileExcludes []string
	FileIncludes []string
}

func (f GlobFilter) IncludeDir(relPath string) bool {
	for _, pat := range f.DirExcludes {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return false
		}
	}
	return true
}

func (f GlobFilter) IncludeFile(relPath string) bool {
	for _, pat := range f.FileExcludes {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return false
		}
	}
	if len(f.FileIncludes) == 0 {
		return true
	}
	for _, pat := range f.FileIncludes {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return true
		}
	}
	return false
}
