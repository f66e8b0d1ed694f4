package algorithm

import (
	"encoding/hex"
	"fmt"
	"unicode"

	"github.com/mpw-go/mpw/pkg/crypto"
)

// MasterKey is the 64-byte scrypt output for one (fullName,
// masterSecret, version) triple. It is derived once per session and
// wiped when the session ends; it is never persisted.
type MasterKey struct {
	secret  *crypto.Secret
	version Version
}

// DeriveMasterKey maps a user's full name and master secret to the
// 64-byte master key.
//
// The salt is scope || BE32(length(fullName)) || fullName, where the
// length field follows the version's text-length semantics. The master
// secret is the scrypt password. Version 0 rejects non-ASCII full
// names.
//
// The caller owns the returned key and must Wipe it on every path.
func DeriveMasterKey(fullName, masterSecret string, v Version) (*MasterKey, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, v)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: empty full name", ErrInvalidInput)
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("%w: empty master secret", ErrInvalidInput)
	}
	if v == VersionV0 && !isASCII(fullName) {
		return nil, fmt.Errorf("%w: version 0 requires an ASCII full name", ErrInvalidInput)
	}

	salt := make([]byte, 0, len(scopeAuthentication)+4+len(fullName))
	salt = append(salt, scopeAuthentication...)
	salt = crypto.AppendBE32(salt, v.textLength(fullName))
	salt = append(salt, fullName...)
	defer crypto.WipeBytes(salt)

	key, err := crypto.Scrypt([]byte(masterSecret), salt)
	if err != nil {
		return nil, fmt.Errorf("%w: scrypt: %v", ErrCryptoFailure, err)
	}
	return &MasterKey{secret: key, version: v}, nil
}

// Bytes returns the 64 raw key bytes. The slice is borrowed and becomes
// invalid after Wipe.
func (k *MasterKey) Bytes() []byte {
	return k.secret.Bytes()
}

// Version returns the algorithm version the key was derived under.
func (k *MasterKey) Version() Version {
	return k.version
}

// KeyID returns SHA-256 of the master key as lowercase hex. The key ID
// identifies the (fullName, masterSecret) pair on disk without
// revealing either.
func (k *MasterKey) KeyID() string {
	id := crypto.SHA256(k.secret.Bytes())
	return hex.EncodeToString(id[:])
}

// Wipe zeroes the key material. Safe to call more than once.
func (k *MasterKey) Wipe() {
	if k != nil {
		k.secret.Wipe()
	}
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
