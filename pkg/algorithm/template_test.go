package algorithm

import (
	"strings"
	"testing"
)

func TestTemplatesWellFormed(t *testing.T) {
	if err := templatesWellFormed(); err != nil {
		t.Fatal(err)
	}
}

// Every output character of a templated result must lie in the
// character class at its template position, whatever the seed.
func TestMaterializeTemplateDiscipline(t *testing.T) {
	seeds := [][]byte{
		make([]byte, SiteKeyLenBytes),
		func() []byte {
			s := make([]byte, SiteKeyLenBytes)
			for i := range s {
				s[i] = byte(0xFF - i*7)
			}
			return s
		}(),
		func() []byte {
			s := make([]byte, SiteKeyLenBytes)
			for i := range s {
				s[i] = byte(i*13 + 1)
			}
			return s
		}(),
	}

	for resultType, templates := range resultTemplates {
		for _, seed := range seeds {
			out, err := materializeTemplate(seed, resultType)
			if err != nil {
				t.Fatalf("%v: %v", resultType, err)
			}

			pattern := templates[int(seed[0])%len(templates)]
			if len(out) != len(pattern) {
				t.Fatalf("%v: output length %d, pattern length %d", resultType, len(out), len(pattern))
			}
			for i := 0; i < len(pattern); i++ {
				class := characterClasses[pattern[i]]
				if !strings.ContainsRune(class, rune(out[i])) {
					t.Errorf("%v: output[%d] = %q not in class %q (%q)",
						resultType, i, out[i], pattern[i], class)
				}
			}
		}
	}
}

func TestMaterializeTemplateUnknownType(t *testing.T) {
	if _, err := materializeTemplate(make([]byte, SiteKeyLenBytes), TypeKey); err == nil {
		t.Error("expected error for non-template type")
	}
}

func TestSpaceOnlyInPhrase(t *testing.T) {
	for resultType, templates := range resultTemplates {
		for _, pattern := range templates {
			if resultType != TypePhrase && strings.ContainsRune(pattern, ' ') {
				t.Errorf("%v: pattern %q uses the space class", resultType, pattern)
			}
		}
	}
}
