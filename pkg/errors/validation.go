package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateIdentifier validates an entity identifier before it is substituted
// into a URL template. It rejects values that would change the request path.
//
// Rules:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "identifier too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "?", "#"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "identifier contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// resourceKeyRegex matches registry keys: an entity type optionally followed
// by a dotted bundle ("node", "node.article", "taxonomy_term.tags").
var resourceKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)?$`)

// ValidateResourceKey validates a registry key typed by a user.
func ValidateResourceKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "resource key cannot be empty")
	}
	if !resourceKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidInput, "invalid resource key: %q", key)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
