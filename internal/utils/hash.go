package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// hasherPool is a package-level pool of reusable HMAC-SHA256 hash instances.
// Must be initialized via InitHasherPool before use.
var hasherPool sync.Pool

// InitHasherPool initializes a sync.Pool of HMAC-SHA256 hashers used to sign
// push bodies sent to the remote service.
// Each hasher in the pool is configured with the provided hash key.
//
//	utils.InitHasherPool("my-secret-key")
func InitHasherPool(hashKey string) {
	hasherPool = sync.Pool{
		New: func() any {
			return hmac.New(sha256.New, []byte(hashKey))
		},
	}
}

// Hash computes an HMAC-SHA256 signature over the given byte slice
// using a hasher pulled from the global hasher pool.
// InitHasherPool must be called first.
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// HashString computes an HMAC-SHA256 signature over the given string
// using the provided hash key and returns the result as a hex-encoded string.
//
// Unlike Hash, this function does not use the global hasher pool and
// creates a new HMAC instance on each call. Suitable for one-off hashing
// where pool initialization is not desired.
//
// Parameters:
//
//	data    - string to be hashed
//	hashKey - secret key used for the HMAC operation
//
// Returns:
//
//	string - hex-encoded HMAC-SHA256 digest
//
// Example usage:
//
//	signature := utils.HashString("some data", "my-secret-key")
func HashString(data string, hashKey string) string {
	return hex.EncodeToString(hashString([]byte(data), hashKey))
}

func hashString(data []byte, hashKey string) []byte {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write(data)
	return hasher.Sum(nil)
}

// VerifyHashString reports whether signature is the hex-encoded HMAC-SHA256
// of data under hashKey. The comparison is constant-time.
func VerifyHashString(data []byte, signature, hashKey string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, hashString(data, hashKey))
}
