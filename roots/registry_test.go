package roots

import (
	"strings"
	"testing"
)

func TestFindTopLevelRoot(t *testing.T) {
	reg := New([]RootEntry{{Path: "/proj", Filter: AllFilter{}}})

	id, rel, ok := reg.Find("/proj/src/main.go", File)
	if !ok {
		t.Fatalf("expected path to resolve")
	}
	if id != 0 {
		t.Fatalf("expected root 0, got %d", id)
	}
	if rel != "src/main.go" {
		t.Fatalf("expected relative path src/main.go, got %q", rel)
	}
}

func TestFindRejectsOutsidePath(t *testing.T) {
	reg := New([]RootEntry{{Path: "/proj", Filter: AllFilter{}}})

	if _, _, ok := reg.Find("/other/main.go", File); ok {
		t.Fatalf("expected path outside root to be rejected")
	}
}

func TestNestedRootExcludedFromOuter(t *testing.T) {
	reg := New([]RootEntry{
		{Path: "/proj", Filter: AllFilter{}},
		{Path: "/proj/vendor/lib", Filter: AllFilter{}},
	})

	// Entries are sorted by path length descending, so the nested root
	// ends up at index 0 and is tried first.
	id, _, ok := reg.Find("/proj/vendor/lib/x.go", File)
	if !ok || reg.Path(id) != "/proj/vendor/lib" {
		t.Fatalf("expected nested root to claim its own files, got id=%d ok=%v", id, ok)
	}

	// The outer root's own directory entry for the nested root's path is
	// excluded, matching the walk-time mechanism that stops a recursive
	// scan from descending into a directory owned by a more specific root.
	outerID := RootID(1)
	if reg.Path(outerID) != "/proj" {
		t.Fatalf("expected index 1 to be the outer root")
	}
	if _, ok := reg.Contains(outerID, "/proj/vendor/lib", Dir); ok {
		t.Fatalf("expected the outer root to exclude the nested root's own directory")
	}

	outerFileID, _, outerOK := reg.Find("/proj/other.go", File)
	if !outerOK || reg.Path(outerFileID) != "/proj" {
		t.Fatalf("expected unrelated file to resolve against the outer root")
	}
}

type extFilter struct{ ext string }

// IncludeDir rejects a directory if any path component, not just the
// last one, is "node_modules", matching the component-wise exclusion
// pattern a real Filter implementation follows.
func (f extFilter) IncludeDir(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if part == "node_modules" {
			return false
		}
	}
	return true
}
func (f extFilter) IncludeFile(relPath string) bool {
	return len(relPath) > len(f.ext) && relPath[len(relPath)-len(f.ext):] == f.ext
}

func TestParentGating(t *testing.T) {
	reg := New([]RootEntry{{Path: "/proj", Filter: extFilter{ext: ".go"}}})

	if _, _, ok := reg.Find("/proj/node_modules/pkg/index.go", File); ok {
		t.Fatalf("expected file under excluded directory to be rejected regardless of extension")
	}
	if _, _, ok := reg.Find("/proj/src/main.go", File); !ok {
		t.Fatalf("expected .go file under included directory to be accepted")
	}
	if _, _, ok := reg.Find("/proj/src/main.txt", File); ok {
		t.Fatalf("expected non-matching extension to be rejected")
	}
}

func TestGlobFilter(t *testing.T) {
	f := GlobFilter{
		DirExcludes:  []string{"**/node_modules", "**/node_modules/**", ".git", ".git/**"},
		FileIncludes: []string{"**/*.go"},
	}
	if f.IncludeDir("node_modules") {
		t.Fatalf("expected node_modules to be excluded")
	}
	if !f.IncludeDir("src") {
		t.Fatalf("expected src to be included")
	}
	if !f.IncludeFile("src/main.go") {
		t.Fatalf("expected .go file to be included")
	}
	if f.IncludeFile("src/main.txt") {
		t.Fatalf("expected non-.go file to be excluded")
	}
}
