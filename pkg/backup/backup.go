// Package backup rotates a build artifact into a bounded set of numbered
// backups before it is overwritten.
//
// Backups of "dist/app.js" are named "dist/app.js.bak.1" through
// "dist/app.js.bak.N". Rotation fills the first free slot; once all N slots
// are taken, the slot holding the oldest backup is reused, so numbering is
// cyclic and at most N backups ever exist.
package backup

import (
	"fmt"
	"os"
	"time"
)

// Name returns the backup file name for slot n of path.
func Name(path string, n int) string {
	return fmt.Sprintf("%s.bak.%d", path, n)
}

// Rotate preserves the current artifact at path under a backup name.
// It is a no-op when keep <= 0 or when path does not exist.
func Rotate(path string, keep int) error {
	if keep <= 0 {
		return nil
	}
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	target := Name(path, slot(path, keep))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("evict %s: %w", target, err)
	}
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("rotate %s: %w", path, err)
	}
	return nil
}

// slot picks the first free backup slot, or the one with the oldest
// modification time when all are in use. Ties go to the lowest number.
func slot(path string, keep int) int {
	oldest := 1
	var oldestTime time.Time
	for n := 1; n <= keep; n++ {
		info, err := os.Stat(Name(path, n))
		if err != nil {
			return n
		}
		if n == 1 || info.ModTime().Before(oldestTime) {
			oldest, oldestTime = n, info.ModTime()
		}
	}
	return oldest
}

// List returns the existing backups of path in slot order.
func List(path string, keep int) []string {
	var out []string
	for n := 1; n <= keep; n++ {
		name := Name(path, n)
		if _, err := os.Stat(name); err == nil {
			out = append(out, name)
		}
	}
	return out
}
