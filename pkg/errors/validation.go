package errors

import (
	"strings"
	"unicode"
)

// ValidateExtension validates a file extension from the includedExtensions
// option. The leading dot is optional; the extension itself must be a single
// path-free segment.
func ValidateExtension(ext string) error {
	e := strings.TrimPrefix(ext, ".")
	if e == "" {
		return New(ErrCodeInvalidConfig, "extension cannot be empty")
	}
	if strings.ContainsAny(e, "/\\") {
		return New(ErrCodeInvalidConfig, "extension cannot contain path separators: %q", ext)
	}
	if strings.Contains(e, ".") {
		return New(ErrCodeInvalidConfig, "extension must be a single segment: %q", ext)
	}
	for _, r := range e {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "extension contains invalid characters: %q", ext)
		}
	}
	return nil
}

// ValidatePattern validates an exclusion substring. Empty patterns would
// match every entry and are rejected.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return New(ErrCodeInvalidConfig, "exclusion pattern cannot be empty")
	}
	if strings.ContainsRune(pattern, '\x00') {
		return New(ErrCodeInvalidConfig, "exclusion pattern contains a null byte")
	}
	return nil
}

// ValidateMaxDepth validates the maxDepth option before clamping.
// Zero means "unset"; negative values are rejected.
func ValidateMaxDepth(depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidConfig, "maxDepth must be positive, got %d", depth)
	}
	return nil
}
