package algorithm

import (
	"fmt"

	"github.com/mpw-go/mpw/pkg/crypto"
)

// SiteKeyLenBytes is the site key length: one HMAC-SHA-256 output.
const SiteKeyLenBytes = crypto.SHA256LenBytes

// SiteKey is the 32-byte per-site key, derived from the master key for
// one (siteName, counter, purpose, context) tuple.
type SiteKey struct {
	secret *crypto.Secret
}

// DeriveSiteKey maps the master key and site parameters to the 32-byte
// site key.
//
// The HMAC message is scope || BE32(length(siteName)) || siteName ||
// BE32(counter), with BE32(length(context)) || context appended when a
// context is present. Length fields and site-name normalization follow
// the master key's version.
//
// The caller owns the returned key and must Wipe it on every path.
func DeriveSiteKey(master *MasterKey, siteName string, counter uint32, purpose Purpose, context string) (*SiteKey, error) {
	if master == nil || master.secret.Len() == 0 {
		return nil, fmt.Errorf("%w: missing master key", ErrInvalidInput)
	}
	if siteName == "" {
		return nil, fmt.Errorf("%w: empty site name", ErrInvalidInput)
	}

	v := master.version
	siteName = v.normalizeSiteName(siteName)
	scope := purpose.Scope(v)

	salt := make([]byte, 0, len(scope)+4+len(siteName)+4+4+len(context))
	salt = append(salt, scope...)
	salt = crypto.AppendBE32(salt, v.textLength(siteName))
	salt = append(salt, siteName...)
	salt = crypto.AppendBE32(salt, counter)
	if context != "" {
		salt = crypto.AppendBE32(salt, v.textLength(context))
		salt = append(salt, context...)
	}
	defer crypto.WipeBytes(salt)

	key := crypto.HMACSHA256Slice(master.secret.Bytes(), salt)
	return &SiteKey{secret: crypto.NewSecret(key)}, nil
}

// Bytes returns the 32 raw key bytes. The slice is borrowed and becomes
// invalid after Wipe.
func (k *SiteKey) Bytes() []byte {
	return k.secret.Bytes()
}

// Wipe zeroes the key material. Safe to call more than once.
func (k *SiteKey) Wipe() {
	if k != nil {
		k.secret.Wipe()
	}
}
