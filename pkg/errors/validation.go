package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

const (
	maxSourceLen = 2048
	maxPathLen   = 500
)

// IsRemoteSource reports whether source is an http(s) URL rather than a
// local file.
func IsRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ValidateSource checks a matrix source: a local path or an http(s) URL,
// free of control characters. Other URL schemes are rejected.
func ValidateSource(source string) error {
	switch {
	case source == "":
		return New(ErrCodeInvalidInput, "source is empty")
	case len(source) > maxSourceLen:
		return New(ErrCodeInvalidInput, "source longer than %d bytes", maxSourceLen)
	case strings.ContainsFunc(source, unicode.IsControl):
		return New(ErrCodeInvalidInput, "source contains control characters")
	case strings.Contains(source, "://") && !IsRemoteSource(source):
		return New(ErrCodeInvalidInput, "source %q: only http and https URLs are supported", source)
	}
	return nil
}

// ValidatePath checks a path that must stay below some base directory, such
// as a widget source relative to its manifest.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path is empty")
	case len(path) > maxPathLen:
		return New(ErrCodeInvalidPath, "path longer than %d bytes", maxPathLen)
	case strings.ContainsFunc(path, unicode.IsControl):
		return New(ErrCodeInvalidPath, "path contains control characters")
	case strings.Contains(path, `\`):
		return New(ErrCodeInvalidPath, "path %q uses backslashes", path)
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path %q is absolute", path)
	}
	if clean := filepath.ToSlash(filepath.Clean(path)); clean == ".." || strings.HasPrefix(clean, "../") {
		return New(ErrCodeInvalidPath, "path %q leaves its directory", path)
	}
	return nil
}
