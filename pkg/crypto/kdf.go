package crypto

import (
	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. These are pinned: every algorithm version
// derives master keys with exactly this parameter set, and changing any
// of them breaks compatibility with previously generated credentials.
const (
	// ScryptN is the scrypt CPU/memory cost parameter.
	ScryptN = 32768

	// ScryptR is the scrypt block size parameter.
	ScryptR = 8

	// ScryptP is the scrypt parallelization parameter.
	ScryptP = 2

	// MasterKeyLenBytes is the scrypt output length in bytes.
	MasterKeyLenBytes = 64
)

// Scrypt derives MasterKeyLenBytes of key material from a password and
// salt using the pinned cost parameters (N=32768, r=8, p=2).
//
// The returned buffer is a zeroizing Secret owned by the caller; the
// caller must Wipe it when done.
func Scrypt(password, salt []byte) (*Secret, error) {
	key, err := scrypt.Key(password, salt, ScryptN, ScryptR, ScryptP, MasterKeyLenBytes)
	if err != nil {
		return nil, err
	}
	return NewSecret(key), nil
}
