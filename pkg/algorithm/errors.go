package algorithm

import "errors"

var (
	// ErrInvalidInput is returned for empty names or secrets, unknown
	// type or purpose names, and malformed result parameters.
	ErrInvalidInput = errors.New("algorithm: invalid input")

	// ErrUnsupportedVersion is returned when the algorithm version is
	// outside [VersionFirst, VersionCurrent].
	ErrUnsupportedVersion = errors.New("algorithm: unsupported version")

	// ErrCryptoFailure is returned when an underlying primitive fails.
	// This is fatal; the caller should not retry.
	ErrCryptoFailure = errors.New("algorithm: crypto failure")
)
