package scan

import (
	"io"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/esmap/pkg/probe"
)

// Depth bounds. A maxDepth of 0 means unset and selects DepthLimit.
const (
	MinDepth   = 1
	DepthLimit = 10000
)

// DefaultExtensions are the conventional ECMAScript module extensions.
var DefaultExtensions = []string{".js", ".mjs"}

// Options configures a walk.
type Options struct {
	// Output is the destination of the serialized import map. Empty means
	// nothing is persisted.
	Output string

	// Backups is how many previous versions of Output to keep.
	Backups int

	// ExcludedPatterns drops every entry whose name or root-relative path
	// contains one of these substrings.
	ExcludedPatterns []string

	// ExcludedGlobs drops every entry whose root-relative path matches one
	// of these doublestar patterns. Patterns without a slash also match
	// against the entry name.
	ExcludedGlobs []string

	// IncludedExtensions selects which files register specifiers. A leading
	// dot is added when missing. Empty selects DefaultExtensions.
	IncludedExtensions []string

	// MaxDepth bounds recursion; the root is depth 0. Clamped to
	// [MinDepth, DepthLimit].
	MaxDepth int

	// Concurrency caps simultaneous filesystem calls.
	Concurrency int

	// FileSystem overrides the tree to walk. Nil walks the OS directory
	// named by the root argument.
	FileSystem probe.FileSystem

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
}

// CleanExtensions returns exts with leading dots, blanks and duplicates
// removed, in their original order. An empty result selects
// DefaultExtensions.
func CleanExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultExtensions)
	}
	return out
}

// NormalizeExtensions returns the included-extension set with leading dots.
func NormalizeExtensions(exts []string) map[string]struct{} {
	clean := CleanExtensions(exts)
	set := make(map[string]struct{}, len(clean))
	for _, e := range clean {
		set[e] = struct{}{}
	}
	return set
}

// ClampDepth applies the default and the [MinDepth, DepthLimit] bounds.
func ClampDepth(depth int) int {
	switch {
	case depth == 0:
		return DepthLimit
	case depth < MinDepth:
		return MinDepth
	case depth > DepthLimit:
		return DepthLimit
	}
	return depth
}

// Excluded reports whether the entry called name at root-relative path rel
// is skipped. Dot-prefixed names are always skipped.
func (o Options) Excluded(name, rel string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, p := range o.ExcludedPatterns {
		if p == "" {
			continue
		}
		if strings.Contains(name, p) || strings.Contains(rel, p) {
			return true
		}
	}
	for _, g := range o.ExcludedGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if !strings.Contains(g, "/") {
			if ok, _ := doublestar.Match(g, name); ok {
				return true
			}
		}
	}
	return false
}

// ExcludedPath reports whether any segment of the root-relative path rel is
// excluded.
func (o Options) ExcludedPath(rel string) bool {
	if rel == "" || rel == "." {
		return false
	}
	segments := strings.Split(rel, "/")
	for i, name := range segments {
		if name == "." || name == ".." {
			continue
		}
		if o.Excluded(name, strings.Join(segments[:i+1], "/")) {
			return true
		}
	}
	return false
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}
