// backend/fingerprint/fingerprint.go
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the SHA-256 hex digest of the given content. Equal content
// always yields the same digest, which is what the version ledger relies on
// to skip storing unchanged retrievals.
func Sum(content string) string {
	digest := sha256.Sum256([]byte(content))
	return hex.EncodeToString(digest[:])
}

// Equal compares two fingerprints.
func Equal(a, b string) bool {
	return a != "" && a == b
}
