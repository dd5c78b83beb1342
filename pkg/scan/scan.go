package scan

import (
	"context"
	stderrors "errors"
	"io/fs"
	"time"

	"github.com/matzehuels/esmap/pkg/errors"
	"github.com/matzehuels/esmap/pkg/importmap"
	"github.com/matzehuels/esmap/pkg/observability"
	"github.com/matzehuels/esmap/pkg/probe"
)

// Generate validates root, walks it and returns the import map. When
// opts.Output is set the map is also written there; a failed write returns
// the fully computed map together with a WRITE_FAILED error.
func Generate(ctx context.Context, root string, opts Options) (*importmap.ImportMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.logger()

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = probe.Dir(root)
	}
	if err := checkRoot(ctx, fsys, root); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Scan().OnScanStart(ctx, root)
	m := Walk(ctx, fsys, opts)
	err := ctx.Err()
	observability.Scan().OnScanComplete(ctx, root, m.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	logger.Debug("walk complete", "root", root, "entries", m.Len(), "elapsed", time.Since(start).Round(time.Millisecond))

	if opts.Output == "" {
		return m, nil
	}
	if err := importmap.ExportJSON(ctx, m, opts.Output, opts.Backups); err != nil {
		logger.Error("write import map", "path", opts.Output, "err", err)
		return m, errors.Wrap(errors.ErrCodeWriteFailed, err, "cannot write import map to %s", opts.Output)
	}
	logger.Debug("wrote import map", "path", opts.Output)
	return m, nil
}

// checkRoot rejects a root that is missing or not a directory.
func checkRoot(ctx context.Context, fsys probe.FileSystem, root string) error {
	info, err := fsys.Stat(ctx, ".")
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "root path does not exist: %s", root)
	case err != nil:
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot access root path: %s", root)
	case !info.IsDir():
		return errors.New(errors.ErrCodeNotDirectory, "root path is not a directory: %s", root)
	}
	return nil
}

// Walk scans fsys from its root without validating it first. A root that
// cannot be listed yields an empty map. The probe caches are torn down
// before Walk returns.
func Walk(ctx context.Context, fsys probe.FileSystem, opts Options) *importmap.ImportMap {
	p := probe.New(fsys, opts.Concurrency)
	defer p.Close()

	w := &walker{
		probe:    p,
		imports:  importmap.New(),
		opts:     opts,
		exts:     NormalizeExtensions(opts.IncludedExtensions),
		maxDepth: ClampDepth(opts.MaxDepth),
		logger:   opts.logger(),
		visited:  make(map[string]struct{}),
	}
	w.visit(ctx, rootDir, 0)
	return w.imports
}
