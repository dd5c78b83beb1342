package scan

import (
	"context"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/esmap/pkg/importmap"
	"github.com/matzehuels/esmap/pkg/manifest"
	"github.com/matzehuels/esmap/pkg/observability"
	"github.com/matzehuels/esmap/pkg/probe"
)

// rootDir is the root-relative name of the walk root.
const rootDir = "."

// indexName is the base name that also registers its containing directory.
const indexName = "index"

type walker struct {
	probe    *probe.Prober
	imports  *importmap.ImportMap
	opts     Options
	exts     map[string]struct{}
	maxDepth int
	logger   *log.Logger

	mu      sync.Mutex
	visited map[string]struct{} // directory identities
}

// visit processes one directory and reports whether it had content: a
// registered file, a subdirectory with content, or a manifest registration.
func (w *walker) visit(ctx context.Context, dir string, depth int) bool {
	if ctx.Err() != nil || depth >= w.maxDepth {
		return false
	}
	if !w.markVisited(w.probe.Identity(ctx, dir)) {
		w.logger.Debug("directory already visited", "dir", dir)
		return false
	}

	names := w.filter(dir, w.probe.Entries(ctx, dir))
	infos := w.stat(ctx, dir, names)

	var files, subdirs []string
	var manifestFile string
	for i, name := range names {
		info := infos[i]
		switch {
		case info == nil:
			// vanished between listing and stat
		case info.IsDir():
			subdirs = append(subdirs, join(dir, name))
		case !info.Mode().IsRegular():
		case name == manifest.Filename:
			manifestFile = join(dir, name)
		default:
			files = append(files, name)
		}
	}

	hadContent := false
	for _, name := range files {
		if w.registerFile(dir, name) {
			hadContent = true
		}
	}
	if w.recurse(ctx, subdirs, depth+1) {
		hadContent = true
	}
	if manifestFile != "" && w.foldManifest(ctx, dir, manifestFile) > 0 {
		hadContent = true
	}

	if hadContent {
		w.registerDirectory(dir)
	}
	return hadContent
}

// markVisited records the directory identity id and reports whether it was
// new. A symlink back into an ancestor therefore ends the descent.
func (w *walker) markVisited(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.visited[id]; ok {
		return false
	}
	w.visited[id] = struct{}{}
	return true
}

// filter drops hidden and excluded entries. The listing is shared through
// the probe cache and is never modified in place.
func (w *walker) filter(dir string, names []string) []string {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if w.opts.Excluded(name, join(dir, name)) {
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

// stat issues every metadata lookup of a directory at once and joins them.
// Results keep the listing order.
func (w *walker) stat(ctx context.Context, dir string, names []string) []fs.FileInfo {
	infos := make([]fs.FileInfo, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			infos[i] = w.probe.Info(ctx, join(dir, name))
			return nil
		})
	}
	_ = g.Wait()
	return infos
}

// recurse visits sibling directories concurrently and joins them.
func (w *walker) recurse(ctx context.Context, subdirs []string, depth int) bool {
	if len(subdirs) == 0 || depth >= w.maxDepth {
		return false
	}
	found := make([]bool, len(subdirs))
	var g errgroup.Group
	for i, sub := range subdirs {
		g.Go(func() error {
			found[i] = w.visit(ctx, sub, depth)
			return nil
		})
	}
	_ = g.Wait()
	return slices.Contains(found, true)
}

// registerFile registers a module file and reports whether its extension is
// included.
func (w *walker) registerFile(dir, name string) bool {
	ext := path.Ext(name)
	if _, ok := w.exts[ext]; !ok {
		return false
	}
	rel := join(dir, name)
	target := "./" + rel

	w.imports.SetIfAbsent(strings.TrimSuffix(rel, ext), target)
	if strings.TrimSuffix(name, ext) == indexName {
		w.imports.SetIfAbsent(specifier(dir), target)
	}
	return true
}

// foldManifest applies the manifest of dir and returns how many
// registrations took effect.
func (w *walker) foldManifest(ctx context.Context, dir, file string) int {
	data, err := w.probe.ReadFile(ctx, file)
	if err != nil {
		w.logger.Debug("manifest unreadable", "path", file, "err", err)
		return 0
	}
	m, err := manifest.Parse(data)
	if err != nil {
		w.logger.Warn("ignoring manifest", "path", file, "err", err)
		observability.Scan().OnManifestError(ctx, file, err)
		return 0
	}

	n := 0
	for _, r := range m.Registrations(specifier(dir), manifest.RelativeTo(dir)) {
		if w.opts.ExcludedPath(strings.TrimPrefix(r.Path, "./")) {
			w.logger.Debug("manifest entry excluded", "path", file, "specifier", r.Specifier, "target", r.Path)
			continue
		}
		if w.imports.SetIfAbsent(r.Specifier, r.Path) {
			n++
		}
	}
	return n
}

// registerDirectory adds the trailing-slash prefix entry for dir.
func (w *walker) registerDirectory(dir string) {
	if dir == rootDir {
		w.imports.SetIfAbsent("./", "./")
		return
	}
	spec := specifier(dir)
	w.imports.SetIfAbsent(spec+"/", "./"+spec+"/")
}

// specifier returns the directory specifier of a root-relative directory.
// The root has the empty specifier.
func specifier(dir string) string {
	if dir == rootDir {
		return ""
	}
	return strings.TrimSuffix(dir, "/")
}

func join(dir, name string) string {
	if dir == rootDir {
		return name
	}
	return dir + "/" + name
}
