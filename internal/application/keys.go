package application

import (
	"strings"

	"github.com/google/uuid"
)

// NewStorageKey generates a run's storage key: the query name (made safe for
// use as a directory name) plus a random unique suffix. The suffix is a v4
// UUID, so collisions across runs and process restarts are practically
// impossible.
func NewStorageKey(name string) string {
	return sanitizeKeyName(name) + "-" + uuid.NewString()
}

// sanitizeKeyName replaces characters that are hostile in directory names.
func sanitizeKeyName(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "-", ":", "-")
	sanitized := replacer.Replace(strings.TrimSpace(name))
	if sanitized == "" {
		sanitized = "query"
	}
	return sanitized
}
