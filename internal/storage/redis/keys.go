package redis

import "strings"

// Key prefix for every query cache entry
const keyPrefix = "bgtracker"

// namespaced returns the Redis key for a cache key
func namespaced(key string) string {
	return keyPrefix + ":" + key
}

// matchPattern returns a SCAN MATCH pattern selecting every key under prefix.
// Glob metacharacters in the prefix are escaped.
func matchPattern(prefix string) string {
	var b strings.Builder
	b.WriteString(keyPrefix + ":")
	for _, r := range prefix {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	b.WriteRune('*')
	return b.String()
}
