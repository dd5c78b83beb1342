package probe

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

func TestDirFileSystem(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a.js"), []byte("export {}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.js"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	fsys := Dir(dir)

	names, err := fsys.ReadDir(ctx, ".")
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if want := []string{"b.js", "sub"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ReadDir(.) = %v, want %v", names, want)
	}

	info, err := fsys.Stat(ctx, "sub/a.js")
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if info.IsDir() {
		t.Error("sub/a.js should not be a directory")
	}

	data, err := fsys.ReadFile(ctx, "sub/a.js")
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "export {}" {
		t.Errorf("ReadFile = %q", data)
	}
}

func TestDirFileSystemHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Dir(t.TempDir()).ReadDir(ctx, "."); err == nil {
		t.Error("ReadDir with cancelled context should fail")
	}
}

func TestProberFallbacks(t *testing.T) {
	ctx := context.Background()
	p := New(FromFS(fstest.MapFS{
		"a.js": {Data: []byte("")},
	}), 0)
	defer p.Close()

	if names := p.Entries(ctx, "missing"); names != nil {
		t.Errorf("Entries(missing) = %v, want nil", names)
	}
	if info := p.Info(ctx, "missing.js"); info != nil {
		t.Errorf("Info(missing.js) = %v, want nil", info)
	}
	if names := p.Entries(ctx, "."); !reflect.DeepEqual(names, []string{"a.js"}) {
		t.Errorf("Entries(.) = %v", names)
	}
	if info := p.Info(ctx, "a.js"); info == nil || info.IsDir() {
		t.Errorf("Info(a.js) = %v, want regular file", info)
	}
}

func TestProberVanishedDirectoryIsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sub := filepath.Join(dir, "gone")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}

	p := New(Dir(dir), 4)
	defer p.Close()

	if names := p.Entries(ctx, "."); len(names) != 1 {
		t.Fatalf("Entries(.) = %v, want one entry", names)
	}
	if err := os.Remove(sub); err != nil {
		t.Fatal(err)
	}
	if info := p.Info(ctx, "gone"); info != nil {
		t.Errorf("Info(gone) = %v, want nil after removal", info)
	}
	if names := p.Entries(ctx, "gone"); names != nil {
		t.Errorf("Entries(gone) = %v, want nil after removal", names)
	}
}

type countingFS struct {
	FileSystem
	readDirs atomic.Int32
}

func (c *countingFS) ReadDir(ctx context.Context, name string) ([]string, error) {
	c.readDirs.Add(1)
	return c.FileSystem.ReadDir(ctx, name)
}

func TestProberMemoizesListings(t *testing.T) {
	ctx := context.Background()
	fsys := &countingFS{FileSystem: FromFS(fstest.MapFS{"x/y.js": {}})}
	p := New(fsys, 2)

	for i := 0; i < 3; i++ {
		p.Entries(ctx, "x")
	}
	if n := fsys.readDirs.Load(); n != 1 {
		t.Errorf("ReadDir called %d times, want 1", n)
	}

	p.Close()
	p.Entries(ctx, "x")
	if n := fsys.readDirs.Load(); n != 2 {
		t.Errorf("ReadDir called %d times after Close, want 2", n)
	}
	p.Close()
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestDirIdentityFollowsSymlinks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0755); err != nil {
		t.Fatal(err)
	}
	symlink(t, ".", filepath.Join(dir, "lib", "loop"))
	symlink(t, "lib", filepath.Join(dir, "alias"))

	p := New(Dir(dir), 0)
	defer p.Close()

	if root, loop := p.Identity(ctx, "."), p.Identity(ctx, "lib/loop"); root == loop {
		t.Errorf("lib/loop resolves to the root, want lib: %q", loop)
	}
	if lib, loop := p.Identity(ctx, "lib"), p.Identity(ctx, "lib/loop"); lib != loop {
		t.Errorf("Identity(lib/loop) = %q, want %q", loop, lib)
	}
	if lib, alias := p.Identity(ctx, "lib"), p.Identity(ctx, "alias"); lib != alias {
		t.Errorf("Identity(alias) = %q, want %q", alias, lib)
	}
	if lib, nested := p.Identity(ctx, "lib"), p.Identity(ctx, "lib/loop/loop/loop"); lib != nested {
		t.Errorf("Identity(lib/loop/loop/loop) = %q, want %q", nested, lib)
	}
	if got := p.Identity(ctx, "missing"); got != "missing" {
		t.Errorf("Identity(missing) = %q, want the name itself", got)
	}
}

func TestFromFSIdentity(t *testing.T) {
	ctx := context.Background()
	fsys := FromFS(fstest.MapFS{"a/b/c.js": {}})
	for name, want := range map[string]string{".": ".", "a/b": "a/b", "a/./b": "a/b"} {
		got, err := fsys.Identity(ctx, name)
		if err != nil || got != want {
			t.Errorf("Identity(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
}
