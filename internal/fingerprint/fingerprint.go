// Package fingerprint derives deterministic identifiers used as record and
// cache keys.
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sort"
	"strings"
)

// ForLink returns the stable item identifier for a source link. The encoding
// is reversible so equal links always yield equal ids.
func ForLink(link string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(link))
}

// LinkFor decodes an identifier back into the original source link.
func LinkFor(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ForParams hashes a logical request parameter set into a cache key. Pairs
// are sorted by key first, so maps with equal contents always produce the
// same fingerprint regardless of insertion order.
func ForParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
