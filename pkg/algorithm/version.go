// Package algorithm implements the deterministic credential derivation
// scheme: a memory-hard master key from the user's name and secret, a
// per-site HMAC key, and template-driven materialization of the site
// key into a usable credential. Behavior is pinned per algorithm
// version; all versions are supported simultaneously so existing
// credentials keep deriving bit-for-bit.
package algorithm

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Version selects the derivation behavior. Versions are cumulative bug
// fixes; each one is frozen once published.
type Version uint8

const (
	// VersionV0 is the original scheme. Length fields in salts count
	// Unicode code points rather than bytes. The historic behavior
	// depended on the host locale; it is pinned here to the code-point
	// count of the UTF-8 decoding, and the full name is restricted to
	// ASCII so the ambiguity cannot surface there.
	VersionV0 Version = iota

	// VersionV1 counts UTF-8 bytes in salt length fields.
	VersionV1

	// VersionV2 additionally normalizes the site name to NFC before
	// encoding it into the site salt.
	VersionV2

	// VersionV3 fixes the purpose scope byte strings via the version
	// scope table.
	VersionV3

	// VersionFirst is the lowest supported version.
	VersionFirst = VersionV0

	// VersionCurrent is the version used for new users.
	VersionCurrent = VersionV3
)

// Valid reports whether v is a supported version.
func (v Version) Valid() bool {
	return v <= VersionCurrent
}

func (v Version) String() string {
	return fmt.Sprintf("%d", uint8(v))
}

// ParseVersion converts a wire integer into a Version.
func ParseVersion(n int) (Version, error) {
	if n < int(VersionFirst) || n > int(VersionCurrent) {
		return 0, fmt.Errorf("%w: algorithm version %d outside [%d, %d]",
			ErrUnsupportedVersion, n, VersionFirst, VersionCurrent)
	}
	return Version(n), nil
}

// textLength returns the salt length-field value for s under this
// version: code points for V0, UTF-8 bytes for V1 and later.
func (v Version) textLength(s string) uint32 {
	if v == VersionV0 {
		return uint32(utf8.RuneCountInString(s))
	}
	return uint32(len(s))
}

// normalizeSiteName applies the version's site-name normalization.
func (v Version) normalizeSiteName(siteName string) string {
	if v >= VersionV2 {
		return norm.NFC.String(siteName)
	}
	return siteName
}

// Purpose selects the domain separator used when deriving site keys.
type Purpose uint8

const (
	// PurposeAuthentication derives password-class tokens.
	PurposeAuthentication Purpose = iota

	// PurposeIdentification derives login-name tokens.
	PurposeIdentification

	// PurposeRecovery derives security-answer tokens.
	PurposeRecovery
)

// The scope table. The byte strings are part of the wire behavior and
// must be reproduced exactly; every version currently resolves to the
// same three strings.
const (
	scopeAuthentication = "com.lyndir.masterpassword"
	scopeIdentification = "com.lyndir.masterpassword.login"
	scopeRecovery       = "com.lyndir.masterpassword.answer"
)

// Scope returns the purpose's domain-separator byte string for the
// given version.
func (p Purpose) Scope(v Version) string {
	switch p {
	case PurposeIdentification:
		return scopeIdentification
	case PurposeRecovery:
		return scopeRecovery
	default:
		return scopeAuthentication
	}
}

func (p Purpose) String() string {
	switch p {
	case PurposeIdentification:
		return "identification"
	case PurposeRecovery:
		return "recovery"
	default:
		return "authentication"
	}
}

// ParsePurpose accepts the long and single-letter purpose names used by
// the command line: authentication/a, identification/i, recovery/r.
func ParsePurpose(name string) (Purpose, error) {
	switch name {
	case "a", "auth", "authentication":
		return PurposeAuthentication, nil
	case "i", "ident", "identification":
		return PurposeIdentification, nil
	case "r", "rec", "recovery":
		return PurposeRecovery, nil
	}
	return 0, fmt.Errorf("%w: unknown purpose %q", ErrInvalidInput, name)
}
