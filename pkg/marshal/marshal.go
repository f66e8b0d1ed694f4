// Package marshal persists and restores the user/site/question tree.
// Two wire formats share one data model: the legacy line-oriented flat
// format and the structured JSON format. Readers verify the master
// secret against the persisted key ID; writers produce redacted or
// plaintext exports according to the user's redaction flag.
package marshal

import (
	"fmt"

	"github.com/mpw-go/mpw/pkg/algorithm"
)

// ReadUser parses serialized user data. FormatAuto sniffs the format
// from the input. The master secret is required: readers verify it
// against the persisted key ID and fail with ErrWrongMasterPassword on
// mismatch, which is the caller's cue to prompt for re-entry.
func ReadUser(data []byte, f Format, masterSecret string) (*User, error) {
	if f == FormatAuto {
		var err error
		if f, err = Sniff(data); err != nil {
			return nil, err
		}
	}
	switch f {
	case FormatFlat:
		return readFlat(data, masterSecret, false)
	case FormatJSON:
		return readJSON(data, masterSecret, false)
	}
	return nil, fmt.Errorf("%w: cannot read %v", ErrUnknownFormat, f)
}

// ResetUser parses serialized user data while adopting a new master
// secret: the persisted key ID is discarded and replaced by the one
// the new secret derives. Stateful content from a redacted file cannot
// be decrypted under the new key and is dropped; content read from an
// unredacted file is re-encrypted and survives.
func ResetUser(data []byte, f Format, newMasterSecret string) (*User, error) {
	if f == FormatAuto {
		var err error
		if f, err = Sniff(data); err != nil {
			return nil, err
		}
	}
	switch f {
	case FormatFlat:
		return readFlat(data, newMasterSecret, true)
	case FormatJSON:
		return readJSON(data, newMasterSecret, true)
	}
	return nil, fmt.Errorf("%w: cannot read %v", ErrUnknownFormat, f)
}

// WriteUser serializes the user in the given format. Redacted output
// needs no key material; unredacted output materializes credentials
// and requires the user to be authenticated.
func WriteUser(u *User, f Format) ([]byte, error) {
	u.sortSites()
	switch f {
	case FormatFlat:
		return writeFlat(u)
	case FormatJSON:
		return writeJSON(u)
	}
	return nil, fmt.Errorf("%w: cannot write %v", ErrUnknownFormat, f)
}

// siteContentForWrite resolves a site's content field for an export.
//
// Stateful sites carry their ciphertext state (redacted) or decrypted
// plaintext (unredacted), but only when the type's export-content
// feature allows it: device-private state never leaves the device of
// origin and is withheld from written files in both variants.
// Template and derive classes carry the materialized credential in
// unredacted exports and nothing otherwise.
func siteContentForWrite(u *User, s *Site) (string, error) {
	if s.Type.Class() == algorithm.ResultClassStateful {
		if !s.Type.Has(algorithm.FeatureExportContent) {
			return "", nil
		}
		if u.Redacted {
			return s.Content, nil
		}
		if s.Content == "" {
			return "", nil
		}
		return s.result(u, algorithm.PurposeAuthentication, "", s.Type, s.Content)
	}

	if u.Redacted {
		return "", nil
	}
	return s.result(u, algorithm.PurposeAuthentication, "", s.Type, "")
}

// loginForWrite resolves a site's login-name field. Generated logins
// are materialized only into unredacted exports; their result type
// (always name-class) is not persisted.
func loginForWrite(u *User, s *Site) (string, error) {
	if !s.LoginGenerated {
		return s.LoginName, nil
	}
	if u.Redacted {
		return "", nil
	}
	return s.result(u, algorithm.PurposeIdentification, "", algorithm.TypeName, "")
}

// answerForWrite resolves a question's answer. Answers are derived
// (recovery purpose, keyword as context) and appear only in unredacted
// exports; their result type is not persisted.
func answerForWrite(u *User, s *Site, q *Question) (string, error) {
	if u.Redacted {
		return "", nil
	}
	return s.result(u, algorithm.PurposeRecovery, q.Keyword, algorithm.TypePhrase, "")
}

// normalizeSiteOnRead folds a freshly parsed site into model normal
// form: stateful content read from an unredacted file is re-encrypted
// into ciphertext state; re-derivable content is discarded. During a
// master-secret reset, redacted stateful content is dropped because no
// key can decrypt it anymore.
func normalizeSiteOnRead(u *User, s *Site, fileRedacted, reset bool) error {
	if s.Type.Class() != algorithm.ResultClassStateful {
		s.Content = ""
		return nil
	}
	if fileRedacted && reset {
		s.Content = ""
		return nil
	}
	if fileRedacted || s.Content == "" {
		return nil
	}

	key, err := u.MasterKey(s.Algorithm)
	if err != nil {
		return err
	}
	state, err := algorithm.SiteState(key, s.Name, s.Counter, algorithm.PurposeAuthentication, "", s.Type, s.Content)
	if err != nil {
		return err
	}
	s.Content = state
	return nil
}
