package marshal

import (
	"errors"
	"testing"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		data string
		want Format
	}{
		{"flat", "# Format: 1\n", FormatFlat},
		{"flat_leading_newline", "\n# Format: 1\n", FormatFlat},
		{"json", `{"user": {}}`, FormatJSON},
		{"json_leading_whitespace", "  \n\t{}", FormatJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sniff([]byte(tc.data))
			if err != nil {
				t.Fatalf("Sniff() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Sniff() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSniffUnclassifiable(t *testing.T) {
	for _, data := range []string{"", "   \n\t", "hello world"} {
		if _, err := Sniff([]byte(data)); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Sniff(%q) error = %v, want ErrUnknownFormat", data, err)
		}
	}
}

// A corpus mixing both formats must auto-detect with no
// misclassification.
func TestReadUserAutoCorpus(t *testing.T) {
	u := authedUser(t)
	u.AddSite("example.com")

	flat, err := WriteUser(u, FormatFlat)
	if err != nil {
		t.Fatal(err)
	}
	structured, err := WriteUser(u, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	for _, data := range [][]byte{flat, structured, []byte(flatVectorFile), []byte(jsonVectorFile())} {
		got, err := ReadUser(data, FormatAuto, testSecret)
		if err != nil {
			t.Errorf("auto read failed: %v", err)
			continue
		}
		if got.FullName != testFullName {
			t.Errorf("auto read user = %q", got.FullName)
		}
		got.Wipe()
	}
}

func TestFormatNames(t *testing.T) {
	for name, want := range map[string]Format{
		"n": FormatNone, "none": FormatNone,
		"f": FormatFlat, "flat": FormatFlat,
		"j": FormatJSON, "json": FormatJSON,
		"a": FormatAuto, "auto": FormatAuto,
	} {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(xml) error = %v", err)
	}
}

func TestFormatExtensions(t *testing.T) {
	if FormatFlat.Extension() != "mpsites" {
		t.Errorf("flat extension = %q", FormatFlat.Extension())
	}
	if FormatJSON.Extension() != "mpsites.json" {
		t.Errorf("json extension = %q", FormatJSON.Extension())
	}
}

func TestWriteUserUnknownFormat(t *testing.T) {
	u := NewUser(testFullName)
	if _, err := WriteUser(u, FormatNone); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
	if _, err := WriteUser(u, FormatAuto); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}
