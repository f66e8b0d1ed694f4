package marshal

import (
	"bytes"
	"fmt"
)

// Format identifies a persisted wire format.
type Format uint8

const (
	// FormatNone disables persistence.
	FormatNone Format = iota

	// FormatFlat is the legacy line-oriented format: a `# key: value`
	// header block followed by one site per line.
	FormatFlat

	// FormatJSON is the structured key-value format.
	FormatJSON

	// FormatAuto asks the reader to sniff the format from the input.
	FormatAuto
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatFlat:
		return "flat"
	case FormatJSON:
		return "json"
	case FormatAuto:
		return "auto"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Extension returns the vault file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatFlat:
		return "mpsites"
	case FormatJSON:
		return "mpsites.json"
	}
	return ""
}

// ParseFormat accepts the long and single-letter format names used by
// the command line.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "n", "none":
		return FormatNone, nil
	case "f", "flat":
		return FormatFlat, nil
	case "j", "json":
		return FormatJSON, nil
	case "a", "auto":
		return FormatAuto, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Sniff classifies serialized user data by its first non-whitespace
// byte: '{' is structured, '#' is flat.
func Sniff(data []byte) (Format, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrUnknownFormat)
	}
	switch trimmed[0] {
	case '{':
		return FormatJSON, nil
	case '#':
		return FormatFlat, nil
	}
	return 0, fmt.Errorf("%w: input starts with %q", ErrUnknownFormat, trimmed[0])
}
