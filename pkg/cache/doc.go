// Package cache provides a single-flight, cancellable memoization layer.
//
// A [Flight] memoizes an asynchronous lookup by key for the lifetime of one
// run. Concurrent calls for the same key share one underlying fetch, and the
// result (value or error) is kept until the cache is cleared. There is no
// eviction beyond [Flight.Clear], which cancels every fetch that is still in
// flight and discards all entries without waiting for them.
//
// # Usage
//
//	entries := cache.NewFlight("entries", func(ctx context.Context, dir string) ([]string, error) {
//	    return readNames(ctx, dir)
//	})
//	defer entries.Clear()
//
//	names, err := entries.Get(ctx, "src")
//
// # Cancellation
//
// Fetches run on their own goroutine with a context detached from the
// caller's cancellation, so one impatient caller cannot abort a fetch other
// callers are waiting on. A caller whose context ends stops waiting and gets
// ctx.Err(); the fetch itself is only cancelled by Clear.
package cache
