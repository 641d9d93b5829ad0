package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the hex-encoded BLAKE2b-256 digest of payload.
// Tombstones and empty payloads have the digest of the empty input.
func Digest(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
