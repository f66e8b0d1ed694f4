package algorithm

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/mpw-go/mpw/pkg/crypto"
)

// KeyBitsDefault is the derived-key size used when no result parameter
// is given for TypeKey.
const KeyBitsDefault = 512

// SiteResult materializes the credential for a site.
//
// The meaning of resultParam depends on the type's class:
//   - Template: unused.
//   - Stateful: the stored Base64 ciphertext to decrypt.
//   - Derive: the key size in bits (128, 256 or 512; default 512).
//
// Intermediate key material is wiped before returning, on success and
// on error.
func SiteResult(master *MasterKey, siteName string, counter uint32, purpose Purpose, context string, t ResultType, resultParam string) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown result type %d", ErrInvalidInput, t)
	}

	key, err := DeriveSiteKey(master, siteName, counter, purpose, context)
	if err != nil {
		return "", err
	}
	defer key.Wipe()

	switch t.Class() {
	case ResultClassTemplate:
		return materializeTemplate(key.Bytes(), t)

	case ResultClassStateful:
		if resultParam == "" {
			return "", fmt.Errorf("%w: stateful type %v needs stored content", ErrInvalidInput, t)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(resultParam)
		if err != nil {
			return "", fmt.Errorf("%w: stored content is not valid Base64: %v", ErrInvalidInput, err)
		}
		plaintext, err := crypto.AESCTRCrypt(key.Bytes()[:crypto.AESCTRKeySize], ciphertext)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCryptoFailure, err)
		}
		return string(plaintext), nil

	case ResultClassDerive:
		bits, err := parseKeyBits(resultParam)
		if err != nil {
			return "", err
		}
		raw := deriveKeyBytes(key, bits/8)
		defer crypto.WipeBytes(raw)
		return hex.EncodeToString(raw), nil
	}
	return "", fmt.Errorf("%w: result type %d has no class", ErrInvalidInput, t)
}

// SiteState encrypts plaintext content for a stateful site: AES-128-CTR
// under the first 16 bytes of the site key, encoded as Base64 without
// line breaks. The result is what a marshaller persists in the site's
// content field.
func SiteState(master *MasterKey, siteName string, counter uint32, purpose Purpose, context string, t ResultType, plaintext string) (string, error) {
	if t.Class() != ResultClassStateful {
		return "", fmt.Errorf("%w: result type %v does not store state", ErrInvalidInput, t)
	}

	key, err := DeriveSiteKey(master, siteName, counter, purpose, context)
	if err != nil {
		return "", err
	}
	defer key.Wipe()

	ciphertext, err := crypto.AESCTRCrypt(key.Bytes()[:crypto.AESCTRKeySize], []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// deriveKeyBytes expands the site key to n bytes: the key itself,
// followed by HMAC-SHA-256(siteKey, BE32(i)) rounds for i = 1, 2, ...
// until n bytes are available.
func deriveKeyBytes(key *SiteKey, n int) []byte {
	out := make([]byte, 0, n+crypto.SHA256LenBytes)
	out = append(out, key.Bytes()...)
	for i := uint32(1); len(out) < n; i++ {
		out = append(out, crypto.HMACSHA256Slice(key.Bytes(), crypto.BE32(i))...)
	}
	return out[:n]
}

func parseKeyBits(resultParam string) (int, error) {
	if resultParam == "" {
		return KeyBitsDefault, nil
	}
	bits, err := strconv.Atoi(resultParam)
	if err != nil {
		return 0, fmt.Errorf("%w: key size %q is not a number", ErrInvalidInput, resultParam)
	}
	switch bits {
	case 128, 256, 512:
		return bits, nil
	}
	return 0, fmt.Errorf("%w: key size %d not one of 128, 256, 512", ErrInvalidInput, bits)
}
