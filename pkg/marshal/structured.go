package marshal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/mpw-go/mpw/pkg/algorithm"
)

// The structured format: a JSON document with a `user` object and a
// `sites` object keyed by site name, each site carrying a `questions`
// object keyed by keyword. Unknown keys at every level are preserved
// on read and re-emitted verbatim on write.

const jsonFormatVersion = 1

// userDoc mirrors the known keys of the `user` object. Pointer fields
// distinguish absent from zero.
type userDoc struct {
	Format    *int           `mapstructure:"format"`
	Avatar    uint32         `mapstructure:"avatar"`
	FullName  string         `mapstructure:"full_name"`
	LastUsed  string         `mapstructure:"last_used"`
	KeyID     string         `mapstructure:"key_id"`
	Algorithm *int           `mapstructure:"algorithm"`
	Redacted  *bool          `mapstructure:"redacted"`
	Default   map[string]any `mapstructure:"default"`
}

// defaultDoc mirrors the known keys of the `user.default` object.
type defaultDoc struct {
	Type      *int `mapstructure:"type"`
	Algorithm *int `mapstructure:"algorithm"`
}

// siteDoc mirrors the known keys of a site object.
type siteDoc struct {
	Type           *int           `mapstructure:"type"`
	Counter        *uint32        `mapstructure:"counter"`
	Algorithm      *int           `mapstructure:"algorithm"`
	Password       string         `mapstructure:"password"`
	LoginName      string         `mapstructure:"login_name"`
	LoginGenerated bool           `mapstructure:"login_generated"`
	URL            string         `mapstructure:"url"`
	Uses           uint32         `mapstructure:"uses"`
	LastUsed       string         `mapstructure:"last_used"`
	Questions      map[string]any `mapstructure:"questions"`
}

// decodeNode decodes a raw JSON object into doc and returns the keys
// the doc did not consume, preserving them for the write side.
func decodeNode(raw map[string]any, doc any, where string) (map[string]any, error) {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &ParseError{Field: where, Msg: err.Error()}
	}

	var extra map[string]any
	for _, key := range md.Unused {
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = raw[key]
	}
	return extra, nil
}

func readJSON(data []byte, masterSecret string, reset bool) (*User, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}

	userRaw, ok := root["user"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: user", ErrMissingField)
	}

	var udoc userDoc
	userExtra, err := decodeNode(userRaw, &udoc, "user")
	if err != nil {
		return nil, err
	}
	if udoc.FullName == "" {
		return nil, fmt.Errorf("%w: user.full_name", ErrMissingField)
	}
	if udoc.Format != nil && *udoc.Format != jsonFormatVersion {
		return nil, &ParseError{Field: "user.format", Msg: fmt.Sprintf("unsupported format %d", *udoc.Format)}
	}

	u := NewUser(udoc.FullName)
	u.Avatar = udoc.Avatar
	u.KeyID = strings.ToLower(udoc.KeyID)
	u.Extra = userExtra
	if udoc.Algorithm != nil {
		if u.Algorithm, err = algorithm.ParseVersion(*udoc.Algorithm); err != nil {
			return nil, err
		}
	}
	if udoc.Default != nil {
		var ddoc defaultDoc
		if u.DefaultExtra, err = decodeNode(udoc.Default, &ddoc, "user.default"); err != nil {
			return nil, err
		}
		if ddoc.Type != nil {
			if u.DefaultType, err = algorithm.ParseResultTypeInt(*ddoc.Type); err != nil {
				return nil, &ParseError{Field: "user.default.type", Msg: err.Error()}
			}
		}
	}
	if udoc.Redacted != nil {
		u.Redacted = *udoc.Redacted
	}
	if u.LastUsed, err = jsonTime(udoc.LastUsed, "user.last_used"); err != nil {
		return nil, err
	}

	// Document-level unknowns.
	for key, value := range root {
		if key == "user" || key == "sites" {
			continue
		}
		if u.Extensions == nil {
			u.Extensions = make(map[string]any)
		}
		u.Extensions[key] = value
	}

	if reset {
		u.KeyID = ""
	}
	if err := u.Authenticate(masterSecret); err != nil {
		return nil, err
	}

	sitesRaw, _ := root["sites"].(map[string]any)
	for name, rawSite := range sitesRaw {
		siteMap, ok := rawSite.(map[string]any)
		if !ok {
			return nil, &ParseError{Field: "sites." + name, Msg: "site is not an object"}
		}
		site, err := readJSONSite(u, name, siteMap, reset)
		if err != nil {
			return nil, err
		}
		u.Sites = append(u.Sites, site)
	}
	u.sortSites()
	return u, nil
}

func readJSONSite(u *User, name string, raw map[string]any, reset bool) (*Site, error) {
	var sdoc siteDoc
	extra, err := decodeNode(raw, &sdoc, "sites."+name)
	if err != nil {
		return nil, err
	}

	site := &Site{
		Name:           name,
		Type:           u.DefaultType,
		Counter:        1,
		Algorithm:      u.Algorithm,
		Content:        sdoc.Password,
		LoginName:      sdoc.LoginName,
		LoginGenerated: sdoc.LoginGenerated,
		URL:            sdoc.URL,
		Uses:           sdoc.Uses,
		Extra:          extra,
	}
	if sdoc.Type != nil {
		if site.Type, err = algorithm.ParseResultTypeInt(*sdoc.Type); err != nil {
			return nil, &ParseError{Field: "sites." + name + ".type", Msg: err.Error()}
		}
	}
	if sdoc.Counter != nil {
		site.Counter = *sdoc.Counter
	}
	if sdoc.Algorithm != nil {
		if site.Algorithm, err = algorithm.ParseVersion(*sdoc.Algorithm); err != nil {
			return nil, err
		}
	}
	if site.LastUsed, err = jsonTime(sdoc.LastUsed, "sites."+name+".last_used"); err != nil {
		return nil, err
	}

	for keyword, rawQuestion := range sdoc.Questions {
		questionMap, ok := rawQuestion.(map[string]any)
		if !ok {
			return nil, &ParseError{Field: "sites." + name + ".questions." + keyword, Msg: "question is not an object"}
		}
		question := &Question{Keyword: keyword}
		for key, value := range questionMap {
			if key == "answer" {
				continue // derived; not part of the model
			}
			if question.Extra == nil {
				question.Extra = make(map[string]any)
			}
			question.Extra[key] = value
		}
		site.Questions = append(site.Questions, question)
	}

	if err := normalizeSiteOnRead(u, site, u.Redacted, reset); err != nil {
		return nil, err
	}
	return site, nil
}

func writeJSON(u *User) ([]byte, error) {
	userMap := make(map[string]any, len(u.Extra)+8)
	for key, value := range u.Extra {
		userMap[key] = value
	}
	userMap["format"] = jsonFormatVersion
	userMap["avatar"] = u.Avatar
	userMap["full_name"] = u.FullName
	userMap["key_id"] = u.KeyID
	userMap["algorithm"] = int(u.Algorithm)
	userMap["redacted"] = u.Redacted
	defaultMap := make(map[string]any, len(u.DefaultExtra)+2)
	for key, value := range u.DefaultExtra {
		defaultMap[key] = value
	}
	defaultMap["type"] = int(u.DefaultType)
	defaultMap["algorithm"] = int(u.Algorithm)
	userMap["default"] = defaultMap
	if !u.LastUsed.IsZero() {
		userMap["last_used"] = u.LastUsed.UTC().Format(time.RFC3339)
	}

	sitesMap := make(map[string]any, len(u.Sites))
	for _, site := range u.Sites {
		siteMap, err := writeJSONSite(u, site)
		if err != nil {
			return nil, err
		}
		sitesMap[site.Name] = siteMap
	}

	root := make(map[string]any, len(u.Extensions)+2)
	for key, value := range u.Extensions {
		root[key] = value
	}
	root["user"] = userMap
	root["sites"] = sitesMap

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func writeJSONSite(u *User, site *Site) (map[string]any, error) {
	content, err := siteContentForWrite(u, site)
	if err != nil {
		return nil, err
	}
	login, err := loginForWrite(u, site)
	if err != nil {
		return nil, err
	}

	siteMap := make(map[string]any, len(site.Extra)+10)
	for key, value := range site.Extra {
		siteMap[key] = value
	}
	siteMap["type"] = int(site.Type)
	siteMap["counter"] = site.Counter
	siteMap["algorithm"] = int(site.Algorithm)
	siteMap["uses"] = site.Uses
	siteMap["login_generated"] = site.LoginGenerated
	if content != "" {
		siteMap["password"] = content
	}
	if login != "" {
		siteMap["login_name"] = login
	}
	if site.URL != "" {
		siteMap["url"] = site.URL
	}
	if !site.LastUsed.IsZero() {
		siteMap["last_used"] = site.LastUsed.UTC().Format(time.RFC3339)
	}

	if len(site.Questions) > 0 {
		questionsMap := make(map[string]any, len(site.Questions))
		for _, question := range site.Questions {
			questionMap := make(map[string]any, len(question.Extra)+1)
			for key, value := range question.Extra {
				questionMap[key] = value
			}
			answer, err := answerForWrite(u, site, question)
			if err != nil {
				return nil, err
			}
			if answer != "" {
				questionMap["answer"] = answer
			}
			questionsMap[question.Keyword] = questionMap
		}
		siteMap["questions"] = questionsMap
	}
	return siteMap, nil
}

func jsonTime(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Msg: err.Error()}
	}
	return t.UTC(), nil
}
