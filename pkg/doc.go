// Package pkg provides the libraries behind esmap, an import map generator
// for trees of ECMAScript modules.
//
// # Overview
//
// esmap walks a directory, registers every module file under a bare
// specifier, folds in package.json main and exports entries, and writes the
// result as an import map document:
//
//	{
//	  "imports": {
//	    "./": "./",
//	    "app": "./app.js",
//	    "components/": "./components/",
//	    "vendor/lit": "./vendor/lit/index.js",
//	    "vendor/lit/decorators.js": "./vendor/lit/decorators.js"
//	  }
//	}
//
// # Architecture
//
// A walk is carried out by five packages:
//
//   - [probe] - Memoized listings, metadata and directory identity.
//   - [scan] - Parallel walk with exclusion and a depth bound.
//   - [manifest] - Resolution of package.json main and exports.
//   - [importmap] - First-write-wins map with a locked, atomic JSON export.
//   - [backup] - Rotation of the previous output file.
//
// The data flow through a walk:
//
//	root directory
//	     ↓
//	probe
//	     ↓
//	scan  ←  manifest
//	     ↓
//	importmap  →  backup
//
// Around the walk:
//
//   - [cache] - Single-flight, cancellable memoization used by [probe].
//   - [config] - esmap.toml / esmap.yaml project settings.
//   - [server] - HTTP server for a tree and its live import map.
//   - [watch] - Debounced change notification for watch mode.
//   - [bundle] - Bundles the module a specifier resolves to.
//   - [errors] - Structured errors with machine-readable codes.
//   - [observability] - Hooks for scan and cache events.
//   - [buildinfo] - Version information injected at build time.
//
// # Quick Start
//
//	m, err := scan.Generate(ctx, "web", scan.Options{
//	    Output:           "web/importmap.json",
//	    ExcludedPatterns: []string{"node_modules"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(m.Len(), "specifiers")
//
// [probe]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/probe
// [scan]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/scan
// [manifest]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/manifest
// [importmap]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/importmap
// [backup]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/backup
// [cache]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/server
// [watch]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/watch
// [bundle]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/bundle
// [errors]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/esmap/pkg/buildinfo
package pkg
