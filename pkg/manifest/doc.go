// Package manifest reads package.json manifests and resolves the files they
// designate as a package's entry points.
//
// Two fields are consulted: "main", a single file path, and "exports", which
// is either a file path or a structure of conditions and subpaths. Exports
// are decoded into a [Value], a small tagged variant, and every precedence
// rule is implemented over that variant:
//
//   - A [KindConditions] object resolves by the condition order
//     default, browser, import, node, then the first resolvable value in
//     document order.
//   - A [KindSubpaths] object maps "." to the package root and "./x" keys to
//     subpath specifiers.
//   - A [KindFallbacks] array resolves to its first resolvable element.
//
// Object key order is significant, so manifests are decoded with gjson,
// which iterates objects in document order.
package manifest
