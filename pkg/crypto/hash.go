// Package crypto provides the cryptographic primitives for the password
// generator: SHA-256, HMAC-SHA-256, the pinned scrypt parameter set,
// AES-128-CTR with a zero IV, constant-time comparison and zeroizing
// secret buffers. Everything above this package is deterministic
// plumbing over these functions.
package crypto

import (
	"crypto/sha256"
	"hash"
)

// SHA256LenBytes is the SHA-256 output length in bytes.
const SHA256LenBytes = 32

// SHA256 computes the SHA-256 cryptographic hash of a message.
//
// Returns a 32-byte (256-bit) hash digest.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Slice computes the SHA-256 hash and returns it as a slice.
// This is a convenience function for cases where a slice is preferred.
func SHA256Slice(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// NewSHA256 returns a new hash.Hash for computing SHA-256 digests
// incrementally.
func NewSHA256() hash.Hash {
	return sha256.New()
}
