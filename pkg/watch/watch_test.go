package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/esmap/pkg/errors"
)

// start runs a watcher on root and returns the channel of change batches.
func start(t *testing.T, root string, skip func(string, bool) bool) <-chan []string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Root:     root,
			Skip:     skip,
			Debounce: 20 * time.Millisecond,
			OnChange: func(_ context.Context, changed []string) error {
				changes <- changed
				return nil
			},
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run did not stop after cancel")
		}
	})
	return changes
}

// touchUntil rewrites path until a batch containing want arrives. Rewriting
// covers the window before the watcher has registered its directories.
func touchUntil(t *testing.T, changes <-chan []string, path, want string) []string {
	t.Helper()
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, []byte(time.Now().String()), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case batch := <-changes:
			if slices.Contains(batch, want) {
				return batch
			}
		case <-tick.C:
		case <-deadline:
			t.Fatalf("no change reported for %s", want)
		}
	}
}

func TestRunReportsChanges(t *testing.T) {
	root := t.TempDir()
	changes := start(t, root, nil)
	touchUntil(t, changes, filepath.Join(root, "a.js"), "a.js")
}

func TestRunWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	changes := start(t, root, nil)
	touchUntil(t, changes, filepath.Join(root, "marker.js"), "marker.js")

	if err := os.Mkdir(filepath.Join(root, "late"), 0o755); err != nil {
		t.Fatal(err)
	}
	touchUntil(t, changes, filepath.Join(root, "late", "x.js"), "late/x.js")
}

func TestRunSkipsPaths(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".cache"), 0o755); err != nil {
		t.Fatal(err)
	}
	skip := func(rel string, _ bool) bool {
		return strings.HasPrefix(rel, ".") || rel == "importmap.json"
	}
	changes := start(t, root, skip)

	for _, name := range []string{".cache/x.js", "importmap.json"} {
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(name)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	batch := touchUntil(t, changes, filepath.Join(root, "visible.js"), "visible.js")
	for _, p := range batch {
		if p != "visible.js" {
			t.Errorf("skipped path reported: %q", p)
		}
	}
}

func TestRunRejectsMissingRoot(t *testing.T) {
	err := Run(context.Background(), Config{Root: filepath.Join(t.TempDir(), "nope")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
