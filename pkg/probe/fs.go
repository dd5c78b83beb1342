package probe

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// FileSystem is the read-only view of a directory tree the walker runs
// against. Names are slash-separated and relative to the tree root; "." is
// the root itself.
type FileSystem interface {
	// ReadDir returns the entry names of a directory in listing order.
	ReadDir(ctx context.Context, name string) ([]string, error)

	// Stat returns entry metadata, following symlinks.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)

	// ReadFile returns the contents of a regular file.
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// Identity returns a key that is equal for two names only if they
	// denote the same directory, however it was reached.
	Identity(ctx context.Context, name string) (string, error)
}

// Dir returns a FileSystem rooted at an operating system directory.
func Dir(root string) FileSystem {
	return dirFS{root: root}
}

type dirFS struct {
	root string
}

func (d dirFS) path(name string) string {
	if name == "." || name == "" {
		return d.root
	}
	return filepath.Join(d.root, filepath.FromSlash(name))
}

func (d dirFS) ReadDir(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.path(name))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (d dirFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(d.path(name))
}

func (d dirFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(d.path(name))
}

// Identity resolves every symlink on the way to name.
func (d dirFS) Identity(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(d.path(name))
}

// FromFS adapts an io/fs.FS, such as an embed.FS or fstest.MapFS.
func FromFS(fsys fs.FS) FileSystem {
	return ioFS{fsys: fsys}
}

type ioFS struct {
	fsys fs.FS
}

func (f ioFS) ReadDir(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (f ioFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.Stat(f.fsys, name)
}

func (f ioFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.ReadFile(f.fsys, name)
}

// Identity is the cleaned name, since io/fs offers no way to resolve links.
func (f ioFS) Identity(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return path.Clean(name), nil
}
