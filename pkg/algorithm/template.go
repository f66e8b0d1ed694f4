package algorithm

import "fmt"

// A template is a string of character-class codes; each code position
// consumes one site-key byte. Patterns are bounded at 31 characters so
// a pattern plus its selector byte never indexes past the 32-byte site
// key; templatesWellFormed pins this.
var resultTemplates = map[ResultType][]string{
	TypeMaximum: {
		"anoxxxxxxxxxxxxxxxxx",
		"axxxxxxxxxxxxxxxxxno",
	},
	TypeLong: {
		"CvcvnoCvcvCvcv", "CvcvCvcvnoCvcv", "CvcvCvcvCvcvno",
		"CvccnoCvcvCvcv", "CvccCvcvnoCvcv", "CvccCvcvCvcvno",
		"CvcvnoCvccCvcv", "CvcvCvccnoCvcv", "CvcvCvccCvcvno",
		"CvcvnoCvcvCvcc", "CvcvCvcvnoCvcc", "CvcvCvcvCvccno",
		"CvccnoCvccCvcv", "CvccCvccnoCvcv", "CvccCvccCvcvno",
		"CvcvnoCvccCvcc", "CvcvCvccnoCvcc", "CvcvCvccCvccno",
		"CvccnoCvcvCvcc", "CvccCvcvnoCvcc", "CvccCvcvCvccno",
	},
	TypeMedium: {
		"CvcnoCvc", "CvcCvcno",
	},
	TypeBasic: {
		"aaanaaan", "aannaaan", "aaannaaa",
	},
	TypeShort: {
		"Cvcn",
	},
	TypePIN: {
		"nnnn",
	},
	TypeName: {
		"cvccvcvcv",
	},
	TypePhrase: {
		"cvcc cvc cvccvcv cvc", "cvc cvccvcvcv cvcv", "cv cvccv cvc cvcvccv",
	},
}

// Character classes. The space class exists only for phrase templates.
var characterClasses = map[byte]string{
	'V': "AEIOU",
	'C': "BCDFGHJKLMNPQRSTVWXYZ",
	'v': "aeiou",
	'c': "bcdfghjklmnpqrstvwxyz",
	'A': "AEIOUBCDFGHJKLMNPQRSTVWXYZ",
	'a': "AEIOUaeiouBCDFGHJKLMNPQRSTVWXYZbcdfghjklmnpqrstvwxyz",
	'n': "0123456789",
	'o': "@&%?,=[]_:-+*$#!'^~;()/.",
	'x': "AEIOUaeiouBCDFGHJKLMNPQRSTVWXYZbcdfghjklmnpqrstvwxyz0123456789!@#$%^&*()",
	' ': " ",
}

// materializeTemplate maps a site key to a credential string under the
// type's template set: seed[0] selects the pattern, seed[i+1] selects
// the character for pattern position i.
func materializeTemplate(seed []byte, t ResultType) (string, error) {
	templates, ok := resultTemplates[t]
	if !ok {
		return "", fmt.Errorf("%w: no templates for result type %v", ErrInvalidInput, t)
	}

	pattern := templates[int(seed[0])%len(templates)]
	out := make([]byte, len(pattern))
	for i := 0; i < len(pattern); i++ {
		class := characterClasses[pattern[i]]
		out[i] = class[int(seed[i+1])%len(class)]
	}
	return string(out), nil
}

// templatesWellFormed verifies the static table properties: every
// pattern fits the 32-byte site key and uses only known classes. It is
// exercised by the package tests.
func templatesWellFormed() error {
	for t, templates := range resultTemplates {
		for _, pattern := range templates {
			if len(pattern) > SiteKeyLenBytes-1 {
				return fmt.Errorf("template %q for %v exceeds %d characters", pattern, t, SiteKeyLenBytes-1)
			}
			for i := 0; i < len(pattern); i++ {
				if _, ok := characterClasses[pattern[i]]; !ok {
					return fmt.Errorf("template %q for %v uses unknown class %q", pattern, t, pattern[i])
				}
			}
		}
	}
	return nil
}
