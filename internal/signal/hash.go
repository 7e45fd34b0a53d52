package signal

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the SHA-256 hex digest of the normalized text.
// It is the sole deduplication key: identical normalized text always
// collides, regardless of how the feedback arrived.
func ContentHash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
