// AES-128-CTR with an all-zero IV, applied once over a fixed-length
// plaintext with a per-site key (the first 16 bytes of a derived site
// key). The zero IV is a wire-format compatibility constraint inherited
// from the stored-content format, not a general recommendation: the key
// depends only on the site parameters, so content stored again for the
// same site and counter is encrypted under the same keystream.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// AESCTRKeySize is the AES-128 key size in bytes.
const AESCTRKeySize = 16

// ErrAESCTRInvalidKeySize is returned when the key is not 16 bytes.
var ErrAESCTRInvalidKeySize = errors.New("aesctr: invalid key size, must be 16 bytes")

// AESCTRCrypt encrypts or decrypts data with AES-128-CTR using a zero
// IV and a counter starting at 0. CTR encryption and decryption are the
// same operation, so a single function covers both directions.
//
// Returns a new slice of the same length as data.
func AESCTRCrypt(key, data []byte) ([]byte, error) {
	if len(key) != AESCTRKeySize {
		return nil, ErrAESCTRInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	var iv [aes.BlockSize]byte
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv[:]).XORKeyStream(out, data)
	return out, nil
}
