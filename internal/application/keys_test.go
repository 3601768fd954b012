package application_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"varafleet/internal/application"
)

func TestNewStorageKey_Unique(t *testing.T) {
	const n = 10_000

	seen := make(map[string]bool, n)
	for range n {
		key := application.NewStorageKey("find-sql-injection")
		assert.False(t, seen[key], "duplicate storage key %s", key)
		seen[key] = true
	}
}

func TestNewStorageKey_PrefixedWithName(t *testing.T) {
	key := application.NewStorageKey("my-query")
	assert.True(t, strings.HasPrefix(key, "my-query-"))
}

func TestNewStorageKey_SanitizesHostileNames(t *testing.T) {
	key := application.NewStorageKey("pack/query name:v2")
	assert.NotContains(t, key, "/")
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, ":")
}

func TestNewStorageKey_EmptyName(t *testing.T) {
	key := application.NewStorageKey("")
	assert.True(t, strings.HasPrefix(key, "query-"))
}
