package marshal

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mpw-go/mpw/pkg/algorithm"
)

// The flat format: a `# key: value` header block terminated by a blank
// line, then one site per line. Fields on a site line are separated by
// runs of two or more spaces (the site name may contain single
// spaces); the first field packs last-used and use count with a single
// space between them:
//
//	<lastUsed> <uses>  <type>:<algorithm>:<counter>  <siteName>  <content>  <loginName>  <url>
//
// Empty values are written as "-". The format carries no recovery
// questions and no login-generated flag; both are lost on a flat
// round-trip.

// flatFieldSep splits site-line fields.
var flatFieldSep = regexp.MustCompile(`[ \t]{2,}`)

const flatFormatVersion = 1

func writeFlat(u *User) ([]byte, error) {
	var b bytes.Buffer

	passwords := "redacted"
	if !u.Redacted {
		passwords = "visible"
	}
	fmt.Fprintf(&b, "# Format: %d\n", flatFormatVersion)
	fmt.Fprintf(&b, "# Date: %s\n", flatTime(u.LastUsed))
	fmt.Fprintf(&b, "# User Name: %s\n", u.FullName)
	fmt.Fprintf(&b, "# Full Name: %s\n", u.FullName)
	fmt.Fprintf(&b, "# Avatar: %d\n", u.Avatar)
	fmt.Fprintf(&b, "# Key ID: %s\n", u.KeyID)
	fmt.Fprintf(&b, "# Algorithm: %d\n", u.Algorithm)
	fmt.Fprintf(&b, "# Default Type: %d\n", u.DefaultType)
	fmt.Fprintf(&b, "# Passwords: %s\n", passwords)
	b.WriteByte('\n')

	for _, site := range u.Sites {
		content, err := siteContentForWrite(u, site)
		if err != nil {
			return nil, err
		}
		login, err := loginForWrite(u, site)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(&b, "%s %d  %d:%d:%d  %s  %s  %s  %s\n",
			flatTime(site.LastUsed), site.Uses,
			site.Type, site.Algorithm, site.Counter,
			site.Name, dash(content), dash(login), dash(site.URL))
	}
	return b.Bytes(), nil
}

func readFlat(data []byte, masterSecret string, reset bool) (*User, error) {
	u := NewUser("")

	var (
		scanner    = bufio.NewScanner(bytes.NewReader(data))
		lineNo     = 0
		inHeader   = true
		userName   string
		sitesLines []struct {
			text string
			no   int
		}
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t")

		if inHeader {
			if line == "" {
				inHeader = false
				continue
			}
			if strings.HasPrefix(line, "#") {
				key, value, ok := splitHeaderLine(line)
				if !ok {
					continue // decorative comment
				}
				if err := applyHeader(u, &userName, key, value, lineNo); err != nil {
					return nil, err
				}
				continue
			}
			inHeader = false
		}
		if line == "" {
			continue
		}
		sitesLines = append(sitesLines, struct {
			text string
			no   int
		}{line, lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}

	if u.FullName == "" {
		u.FullName = userName
	}
	if u.FullName == "" {
		return nil, &ParseError{Field: "Full Name", Msg: "header missing"}
	}
	if reset {
		u.KeyID = ""
	}
	if err := u.Authenticate(masterSecret); err != nil {
		return nil, err
	}

	for _, sl := range sitesLines {
		site, err := parseFlatSite(sl.text, sl.no, u)
		if err != nil {
			return nil, err
		}
		if err := normalizeSiteOnRead(u, site, u.Redacted, reset); err != nil {
			return nil, err
		}
		u.Sites = append(u.Sites, site)
	}
	return u, nil
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	rest := strings.TrimPrefix(line, "#")
	rest = strings.TrimLeft(rest, " ")
	key, value, found := strings.Cut(rest, ":")
	if !found || key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func applyHeader(u *User, userName *string, key, value string, lineNo int) error {
	switch key {
	case "Format":
		n, err := strconv.Atoi(value)
		if err != nil || n != flatFormatVersion {
			return &ParseError{Line: lineNo, Field: key, Msg: fmt.Sprintf("unsupported flat format %q", value)}
		}
	case "Date":
		t, err := parseFlatTime(value)
		if err != nil {
			return &ParseError{Line: lineNo, Field: key, Msg: err.Error()}
		}
		u.LastUsed = t
	case "User Name":
		*userName = value
	case "Full Name":
		u.FullName = value
	case "Avatar":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return &ParseError{Line: lineNo, Field: key, Msg: err.Error()}
		}
		u.Avatar = uint32(n)
	case "Key ID":
		u.KeyID = strings.ToLower(value)
	case "Algorithm":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &ParseError{Line: lineNo, Field: key, Msg: err.Error()}
		}
		v, err := algorithm.ParseVersion(n)
		if err != nil {
			return err
		}
		u.Algorithm = v
	case "Default Type":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &ParseError{Line: lineNo, Field: key, Msg: err.Error()}
		}
		t, err := algorithm.ParseResultTypeInt(n)
		if err != nil {
			return &ParseError{Line: lineNo, Field: key, Msg: err.Error()}
		}
		u.DefaultType = t
	case "Passwords":
		u.Redacted = value != "visible"
	}
	// Unrecognized header keys are ignored.
	return nil
}

func parseFlatSite(line string, lineNo int, u *User) (*Site, error) {
	fields := flatFieldSep.Split(line, -1)
	if len(fields) < 4 || len(fields) > 6 {
		return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("expected 4-6 site fields, got %d", len(fields))}
	}

	lastUsedStr, usesStr, ok := strings.Cut(fields[0], " ")
	if !ok {
		return nil, &ParseError{Line: lineNo, Field: "uses", Msg: "missing use count"}
	}
	lastUsed, err := parseFlatTime(lastUsedStr)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Field: "lastUsed", Msg: err.Error()}
	}
	uses, err := strconv.ParseUint(usesStr, 10, 32)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Field: "uses", Msg: err.Error()}
	}

	triplet := strings.Split(fields[1], ":")
	if len(triplet) != 3 {
		return nil, &ParseError{Line: lineNo, Field: "type", Msg: fmt.Sprintf("expected type:algorithm:counter, got %q", fields[1])}
	}
	typeInt, err := strconv.Atoi(triplet[0])
	if err != nil {
		return nil, &ParseError{Line: lineNo, Field: "type", Msg: err.Error()}
	}
	resultType, err := algorithm.ParseResultTypeInt(typeInt)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Field: "type", Msg: err.Error()}
	}
	algInt, err := strconv.Atoi(triplet[1])
	if err != nil {
		return nil, &ParseError{Line: lineNo, Field: "algorithm", Msg: err.Error()}
	}
	version, err := algorithm.ParseVersion(algInt)
	if err != nil {
		return nil, err
	}
	counter, err := strconv.ParseUint(triplet[2], 10, 32)
	if err != nil {
		return nil, &ParseError{Line: lineNo, Field: "counter", Msg: err.Error()}
	}

	site := &Site{
		Name:      fields[2],
		Type:      resultType,
		Counter:   uint32(counter),
		Algorithm: version,
		Content:   undash(fields[3]),
		Uses:      uint32(uses),
		LastUsed:  lastUsed,
	}
	if len(fields) > 4 {
		site.LoginName = undash(fields[4])
	}
	if len(fields) > 5 {
		site.URL = undash(fields[5])
	}
	if site.Name == "" {
		return nil, &ParseError{Line: lineNo, Field: "siteName", Msg: "empty site name"}
	}
	return site, nil
}

// flatTime renders RFC-3339 UTC with second precision; the zero time
// renders as "0" (never used).
func flatTime(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	return t.UTC().Format(time.RFC3339)
}

// parseFlatTime accepts RFC-3339 or integer Unix seconds; "0" and a
// zero epoch both read as the zero time.
func parseFlatTime(s string) (time.Time, error) {
	if s == "0" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return time.Unix(secs, 0).UTC(), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func undash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
