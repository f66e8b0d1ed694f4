package marshal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mpw-go/mpw/pkg/algorithm"
	"github.com/mpw-go/mpw/pkg/crypto"
)

// User is the root of the configuration tree both codecs read and
// write. A User owns its sites and questions exclusively.
//
// Invariant: KeyID equals SHA-256 of the master key derived from
// (FullName, master secret, Algorithm). Authenticate establishes it;
// codec reads enforce it.
type User struct {
	FullName    string
	Avatar      uint32
	KeyID       string // lowercase hex; compared case-insensitively
	Algorithm   algorithm.Version
	DefaultType algorithm.ResultType
	LastUsed    time.Time
	Redacted    bool
	Sites       []*Site

	// Extensions holds unknown document-level keys from a structured
	// read; Extra holds unknown keys of the user object and
	// DefaultExtra those of its default sub-object. All are re-emitted
	// verbatim on write.
	Extensions   map[string]any
	Extra        map[string]any
	DefaultExtra map[string]any

	// masterSecret is retained after Authenticate so keys can be
	// derived on demand for sites pinned to other algorithm versions.
	masterSecret string
	keys         map[algorithm.Version]*algorithm.MasterKey
}

// Site is one site record under a user.
type Site struct {
	Name           string
	Type           algorithm.ResultType
	Counter        uint32
	Algorithm      algorithm.Version
	Content        string // stateful types: Base64 ciphertext state
	LoginName      string
	LoginGenerated bool
	URL            string
	Uses           uint32
	LastUsed       time.Time
	Questions      []*Question

	Extra map[string]any
}

// Question is a recovery question under a site. Answers are
// template-derived (recovery purpose, keyword as context) and are only
// materialized into unredacted exports.
type Question struct {
	Keyword string

	Extra map[string]any
}

// NewUser creates a fresh user with current defaults.
func NewUser(fullName string) *User {
	return &User{
		FullName:    fullName,
		Algorithm:   algorithm.VersionCurrent,
		DefaultType: algorithm.TypeLong,
		Redacted:    true,
	}
}

// Authenticate derives the user's master key from the secret and
// checks it against KeyID. On a fresh user (no KeyID) the key ID is
// adopted. The derived key is cached; call Wipe when the session ends.
func (u *User) Authenticate(masterSecret string) error {
	key, err := algorithm.DeriveMasterKey(u.FullName, masterSecret, u.Algorithm)
	if err != nil {
		return err
	}
	if u.KeyID != "" && !crypto.ConstantTimeEqual([]byte(strings.ToLower(u.KeyID)), []byte(key.KeyID())) {
		key.Wipe()
		return fmt.Errorf("%w (user %q)", ErrWrongMasterPassword, u.FullName)
	}

	u.Wipe()
	u.KeyID = key.KeyID()
	u.masterSecret = masterSecret
	u.keys = map[algorithm.Version]*algorithm.MasterKey{u.Algorithm: key}
	return nil
}

// Authenticated reports whether a master key is available.
func (u *User) Authenticated() bool {
	return len(u.keys) > 0
}

// MasterKey returns the user's master key for the given algorithm
// version, deriving and caching it on first use. ErrLocked is returned
// when Authenticate has not run.
func (u *User) MasterKey(v algorithm.Version) (*algorithm.MasterKey, error) {
	if !u.Authenticated() {
		return nil, ErrLocked
	}
	if key, ok := u.keys[v]; ok {
		return key, nil
	}
	key, err := algorithm.DeriveMasterKey(u.FullName, u.masterSecret, v)
	if err != nil {
		return nil, err
	}
	u.keys[v] = key
	return key, nil
}

// Wipe destroys all cached key material. The User remains usable for
// non-secret operations; Authenticate restores access.
func (u *User) Wipe() {
	for _, key := range u.keys {
		key.Wipe()
	}
	u.keys = nil
	u.masterSecret = ""
}

// FindSite returns the site with the given name, or nil.
func (u *User) FindSite(name string) *Site {
	for _, site := range u.Sites {
		if site.Name == name {
			return site
		}
	}
	return nil
}

// AddSite appends a new site with the user's defaults applied.
func (u *User) AddSite(name string) *Site {
	site := &Site{
		Name:      name,
		Type:      u.DefaultType,
		Counter:   1,
		Algorithm: u.Algorithm,
	}
	u.Sites = append(u.Sites, site)
	return site
}

// sortSites orders sites by name in ASCII byte order, the write order
// of both codecs.
func (u *User) sortSites() {
	sort.Slice(u.Sites, func(i, j int) bool {
		return u.Sites[i].Name < u.Sites[j].Name
	})
}

// Use records a use of the site at the given time.
func (s *Site) Use(now time.Time) {
	s.Uses++
	s.LastUsed = now.UTC().Truncate(time.Second)
}

// result materializes the site's credential with the user's key for
// the site's algorithm version.
func (s *Site) result(u *User, purpose algorithm.Purpose, context string, t algorithm.ResultType, param string) (string, error) {
	key, err := u.MasterKey(s.Algorithm)
	if err != nil {
		return "", err
	}
	return algorithm.SiteResult(key, s.Name, s.Counter, purpose, context, t, param)
}
