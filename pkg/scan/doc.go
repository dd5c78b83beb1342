// Package scan walks a directory tree of ECMAScript modules and produces an
// import map: a deterministic mapping from logical specifiers to
// root-relative file paths.
//
// # Naming sources
//
// Three sources contribute specifiers, applied per directory in this order
// with first-write-wins semantics:
//
//  1. Files whose extension is included register their path without the
//     extension ("lib/util.js" -> "lib/util"). A file named index.<ext> also
//     registers its containing directory ("lib" -> "./lib/index.js").
//  2. Subdirectories are walked concurrently and joined.
//  3. A package.json in the directory contributes its main file, its root
//     export and its subpath exports (see package manifest).
//
// Because files are registered before the manifest is folded in, an index
// file always beats a manifest for the same directory specifier.
//
// Every directory that contributed anything also registers a trailing-slash
// prefix entry ("lib/" -> "./lib/"); the root registers "./" -> "./".
//
// # Resilience
//
// Listing and stat-ing go through the probe layer, which downgrades
// filesystem errors to "empty" or "absent". A tree that changes during the
// walk never aborts it. Malformed manifests are reported through the logger
// and observability hooks and treated as absent. Only an invalid root and a
// failed output write are returned as errors.
//
// # Example
//
//	m, err := scan.Generate(ctx, "web/modules", scan.Options{
//	    Output:           "web/importmap.json",
//	    ExcludedPatterns: []string{"node_modules", "__tests__"},
//	})
package scan
