package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentID validates a document identifier for safety and
// correctness. Document IDs become file names, Redis keys, and Mongo
// _id values, so the rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(CodeInvalidInput, "document ID cannot be empty")
	}

	if len(id) > 128 {
		return New(CodeInvalidInput, "document ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(CodeInvalidInput, "document ID contains invalid control characters")
		}
	}

	// Path separators and traversal would escape the file backend's
	// base directory.
	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(CodeInvalidInput, "document ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDocumentName validates a human-readable document name.
// Names are display-only metadata, so only hard limits apply:
//   - No control characters
//   - Maximum length of 256 characters
//
// An empty name is valid; callers substitute a default.
func ValidateDocumentName(name string) error {
	if len(name) > 256 {
		return New(CodeInvalidInput, "document name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(CodeInvalidInput, "document name contains invalid control characters")
		}
	}

	return nil
}

// knownBackends are the store backends the application can open.
var knownBackends = []string{"memory", "file", "redis", "mongo"}

// ValidateBackend validates a store backend name from configuration.
func ValidateBackend(backend string) error {
	for _, b := range knownBackends {
		if backend == b {
			return nil
		}
	}
	return New(CodeConfigInvalid, "unknown store backend %q (valid: %s)",
		backend, strings.Join(knownBackends, ", "))
}
