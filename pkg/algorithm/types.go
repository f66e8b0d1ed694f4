package algorithm

import (
	"fmt"
	"strconv"
)

// ResultClass is the derivation strategy encoded in bits 4-6 of a
// result type.
type ResultClass uint16

const (
	// ResultClassTemplate generates the credential deterministically
	// from the site key and a template.
	ResultClassTemplate ResultClass = 1 << 4

	// ResultClassStateful encrypts caller-provided content with the
	// site key; the ciphertext is stored on the site record.
	ResultClassStateful ResultClass = 1 << 5

	// ResultClassDerive returns raw key material derived from the site
	// key.
	ResultClassDerive ResultClass = 1 << 6
)

// ResultFeature flags occupy bits 10-12 of a result type and are used
// by drivers to pick defaults.
const (
	// FeatureExportContent marks content that may be exported with the
	// site record.
	FeatureExportContent uint16 = 1 << 10

	// FeatureDevicePrivate marks content that never leaves the device
	// that generated it.
	FeatureDevicePrivate uint16 = 1 << 11

	// FeatureAlternative marks types selected by explicit request
	// rather than offered as defaults.
	FeatureAlternative uint16 = 1 << 12
)

// ResultType tags a credential kind: a class, an identifier in the low
// four bits, and feature flags. The numeric values are wire format:
// they appear in both persisted file formats.
type ResultType uint16

const (
	// TypeMaximum is a 20-character password with symbols.
	TypeMaximum = ResultType(0x0) | ResultType(ResultClassTemplate)

	// TypeLong is a copy-friendly 14-character password with a symbol.
	TypeLong = ResultType(0x1) | ResultType(ResultClassTemplate)

	// TypeMedium is a copy-friendly 8-character password with a symbol.
	TypeMedium = ResultType(0x2) | ResultType(ResultClassTemplate)

	// TypeBasic is an 8-character alphanumeric password.
	TypeBasic = ResultType(0x3) | ResultType(ResultClassTemplate)

	// TypeShort is a 4-character password.
	TypeShort = ResultType(0x4) | ResultType(ResultClassTemplate)

	// TypePIN is a 4-digit number.
	TypePIN = ResultType(0x5) | ResultType(ResultClassTemplate)

	// TypeName is a 9-letter pronounceable name.
	TypeName = ResultType(0xE) | ResultType(ResultClassTemplate)

	// TypePhrase is an 18- or 20-character pronounceable phrase.
	TypePhrase = ResultType(0xF) | ResultType(ResultClassTemplate)

	// TypeStoredPersonal is a user-provided password encrypted with the
	// site key.
	TypeStoredPersonal = ResultType(0x0) | ResultType(ResultClassStateful) | ResultType(FeatureExportContent)

	// TypeStoredDevice is device-local encrypted content; it is never
	// exported off the device of origin.
	TypeStoredDevice = ResultType(0x1) | ResultType(ResultClassStateful) | ResultType(FeatureDevicePrivate)

	// TypeKey is raw key material of a requested bit size.
	TypeKey = ResultType(0x0) | ResultType(ResultClassDerive) | ResultType(FeatureAlternative)
)

// Class returns the type's derivation class bits.
func (t ResultType) Class() ResultClass {
	return ResultClass(t) & (ResultClassTemplate | ResultClassStateful | ResultClassDerive)
}

// Has reports whether the type carries the given feature flag.
func (t ResultType) Has(feature uint16) bool {
	return uint16(t)&feature != 0
}

// Valid reports whether t is a known result type.
func (t ResultType) Valid() bool {
	switch t {
	case TypeMaximum, TypeLong, TypeMedium, TypeBasic, TypeShort, TypePIN,
		TypeName, TypePhrase, TypeStoredPersonal, TypeStoredDevice, TypeKey:
		return true
	}
	return false
}

func (t ResultType) String() string {
	switch t {
	case TypeMaximum:
		return "maximum"
	case TypeLong:
		return "long"
	case TypeMedium:
		return "medium"
	case TypeBasic:
		return "basic"
	case TypeShort:
		return "short"
	case TypePIN:
		return "pin"
	case TypeName:
		return "name"
	case TypePhrase:
		return "phrase"
	case TypeStoredPersonal:
		return "personal"
	case TypeStoredDevice:
		return "device"
	case TypeKey:
		return "key"
	}
	return strconv.Itoa(int(t))
}

// ParseResultType accepts the long and single-letter type names used by
// the command line.
func ParseResultType(name string) (ResultType, error) {
	switch name {
	case "x", "max", "maximum":
		return TypeMaximum, nil
	case "l", "long":
		return TypeLong, nil
	case "m", "med", "medium":
		return TypeMedium, nil
	case "b", "basic":
		return TypeBasic, nil
	case "s", "short":
		return TypeShort, nil
	case "i", "pin":
		return TypePIN, nil
	case "n", "name":
		return TypeName, nil
	case "p", "phrase":
		return TypePhrase, nil
	case "K", "key":
		return TypeKey, nil
	case "P", "personal":
		return TypeStoredPersonal, nil
	case "D", "device":
		return TypeStoredDevice, nil
	}
	return 0, fmt.Errorf("%w: unknown result type %q", ErrInvalidInput, name)
}

// ParseResultTypeInt converts a persisted wire integer into a
// ResultType.
func ParseResultTypeInt(n int) (ResultType, error) {
	t := ResultType(n)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: unknown result type %d", ErrInvalidInput, n)
	}
	return t, nil
}

// DefaultType returns the result type a driver should offer for a
// purpose when the site specifies none: long passwords for
// authentication, names for identification, phrases for recovery.
func (p Purpose) DefaultType() ResultType {
	switch p {
	case PurposeIdentification:
		return TypeName
	case PurposeRecovery:
		return TypePhrase
	default:
		return TypeLong
	}
}
