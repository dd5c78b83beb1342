// Package probe wraps a FileSystem with the memoizing caches the walker
// relies on: directory listings, entry metadata and directory identity.
//
// Every lookup falls back to a safe value on any error. An unreadable or
// vanished directory lists as empty, a vanished entry stats as nil, and a
// name whose identity cannot be resolved is its own identity. A
// tree that changes between listing a directory and stat-ing its former
// contents therefore never aborts a walk.
package probe

import (
	"context"
	"io/fs"

	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/esmap/pkg/cache"
)

// DefaultConcurrency bounds simultaneous filesystem calls when none is given.
const DefaultConcurrency = 64

// Prober memoizes directory listings, entry metadata and directory
// identities for one run.
type Prober struct {
	fsys    FileSystem
	sem     *semaphore.Weighted
	entries *cache.Flight[[]string]
	infos   *cache.Flight[fs.FileInfo]
	ids     *cache.Flight[string]
}

// New creates a Prober over fsys. concurrency caps the number of filesystem
// calls in flight at once; values <= 0 use DefaultConcurrency.
func New(fsys FileSystem, concurrency int) *Prober {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	p := &Prober{
		fsys: fsys,
		sem:  semaphore.NewWeighted(int64(concurrency)),
	}
	p.entries = cache.NewFlight("entries", func(ctx context.Context, name string) ([]string, error) {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.sem.Release(1)
		return p.fsys.ReadDir(ctx, name)
	})
	p.infos = cache.NewFlight("info", func(ctx context.Context, name string) (fs.FileInfo, error) {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer p.sem.Release(1)
		return p.fsys.Stat(ctx, name)
	})
	p.ids = cache.NewFlight("identity", func(ctx context.Context, name string) (string, error) {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return "", err
		}
		defer p.sem.Release(1)
		return p.fsys.Identity(ctx, name)
	})
	return p
}

// Entries returns the entry names of dir, or nil if it cannot be listed.
func (p *Prober) Entries(ctx context.Context, dir string) []string {
	names, err := p.entries.Get(ctx, dir)
	if err != nil {
		return nil
	}
	return names
}

// Info returns metadata for name, or nil if it cannot be stat-ed.
func (p *Prober) Info(ctx context.Context, name string) fs.FileInfo {
	info, err := p.infos.Get(ctx, name)
	if err != nil {
		return nil
	}
	return info
}

// Identity returns the identity of the directory name. Names reached
// through symlinks share the identity of their target.
func (p *Prober) Identity(ctx context.Context, name string) string {
	id, err := p.ids.Get(ctx, name)
	if err != nil {
		return name
	}
	return id
}

// ReadFile reads name under the same concurrency bound as the cached
// lookups. Reads are not memoized and errors are returned to the caller.
func (p *Prober) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)
	return p.fsys.ReadFile(ctx, name)
}

// Close cancels all outstanding lookups and drops every cache.
func (p *Prober) Close() {
	p.entries.Clear()
	p.infos.Clear()
	p.ids.Clear()
}
