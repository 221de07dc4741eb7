package query

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const sep = ":"

// Key builds a cache key from its parts. Every key ends with the
// separator so that Key("game", 1) is a prefix of Key("game", 1, "stats")
// but not of Key("game", 10).
func Key(parts ...any) string {
	var b strings.Builder
	for _, p := range parts {
		fmt.Fprint(&b, p)
		b.WriteString(sep)
	}
	return b.String()
}

// ListKey builds the key for a list query under resource. The encoded
// parameters are digested so keys stay bounded whatever the filter.
func ListKey(resource string, params url.Values) string {
	if len(params) == 0 {
		return Key(resource, "list")
	}
	return Key(resource, "list", Digest(params.Encode()))
}

// Digest returns a short hex digest of s
func Digest(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

// Resource returns the first segment of a key or prefix
func Resource(key string) string {
	resource, _, _ := strings.Cut(key, sep)
	return resource
}
