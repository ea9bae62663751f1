package weights

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeChecksum returns the SHA-256 of the concatenated blobs.
func ComputeChecksum(blobs ...[]byte) [32]byte {
	h := sha256.New()
	for _, b := range blobs {
		h.Write(b)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Fingerprint returns the first 12 hex digits of a checksum, for logs.
func Fingerprint(sum [32]byte) string {
	return hex.EncodeToString(sum[:6])
}
