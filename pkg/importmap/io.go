package importmap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/matzehuels/esmap/pkg/backup"
)

// lockRetry is how often ExportJSON retries a held output lock.
const lockRetry = 50 * time.Millisecond

// WriteJSON writes m to w as pretty-printed JSON with two-space indentation.
func WriteJSON(m *ImportMap, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{Imports: m.Imports()}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes an import map document from r.
func ReadJSON(r io.Reader) (*ImportMap, error) {
	m := New()
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for k, v := range doc.Imports {
		m.imports[k] = v
	}
	return m, nil
}

// ReadFile reads an import map document from path.
func ReadFile(path string) (*ImportMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// LockName returns the advisory lock file used while writing path.
func LockName(path string) string {
	return path + ".lock"
}

// ExportJSON writes m to path. Concurrent writers are serialized through an
// advisory lock next to the file; the previous file is rotated into at most
// backups numbered copies; the new content is written to a temporary file
// and renamed into place, so readers never observe a partial document.
func ExportJSON(ctx context.Context, m *ImportMap, path string, backups int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	lock := flock.New(LockName(path))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", path)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteJSON(m, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if err := backup.Rotate(path, backups); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
