package algorithm

import (
	"encoding/hex"
	"errors"
	"testing"
)

func TestDeriveSiteKey(t *testing.T) {
	master := testMasterKey(t, VersionV3)

	cases := []struct {
		name     string
		siteName string
		counter  uint32
		purpose  Purpose
		context  string
		expected string // hex
	}{
		{
			name:     "authentication",
			siteName: testSiteName,
			counter:  1,
			purpose:  PurposeAuthentication,
			expected: "121b9cd8cacd368be235408c3f23f26918f9a21e871e0032658dd51bd49678d2",
		},
		{
			name:     "other_site",
			siteName: "example.com",
			counter:  1,
			purpose:  PurposeAuthentication,
			expected: "2f15b32c0d2bfd46095d772278bca8071f9737fa5f4fd1c960b35133342c7bd8",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := DeriveSiteKey(master, tc.siteName, tc.counter, tc.purpose, tc.context)
			if err != nil {
				t.Fatalf("DeriveSiteKey() error: %v", err)
			}
			defer key.Wipe()

			if got := hex.EncodeToString(key.Bytes()); got != tc.expected {
				t.Errorf("DeriveSiteKey() = %s, want %s", got, tc.expected)
			}
			if key.secret.Len() != SiteKeyLenBytes {
				t.Errorf("site key length = %d, want %d", key.secret.Len(), SiteKeyLenBytes)
			}
		})
	}
}

func TestDeriveSiteKeyDistinctInputs(t *testing.T) {
	master := testMasterKey(t, VersionV3)

	base, _ := DeriveSiteKey(master, testSiteName, 1, PurposeAuthentication, "")
	defer base.Wipe()

	variants := []struct {
		name     string
		siteName string
		counter  uint32
		purpose  Purpose
		context  string
	}{
		{"counter", testSiteName, 2, PurposeAuthentication, ""},
		{"purpose", testSiteName, 1, PurposeIdentification, ""},
		{"context", testSiteName, 1, PurposeAuthentication, "question"},
		{"site", "example.com", 1, PurposeAuthentication, ""},
	}
	for _, tc := range variants {
		t.Run(tc.name, func(t *testing.T) {
			key, err := DeriveSiteKey(master, tc.siteName, tc.counter, tc.purpose, tc.context)
			if err != nil {
				t.Fatal(err)
			}
			defer key.Wipe()
			if hex.EncodeToString(key.Bytes()) == hex.EncodeToString(base.Bytes()) {
				t.Error("variant input produced the base site key")
			}
		})
	}
}

func TestDeriveSiteKeyInvalidInput(t *testing.T) {
	master := testMasterKey(t, VersionV3)
	if _, err := DeriveSiteKey(master, "", 1, PurposeAuthentication, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty site name: error = %v", err)
	}
	if _, err := DeriveSiteKey(nil, testSiteName, 1, PurposeAuthentication, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil master key: error = %v", err)
	}
}

func TestPurposeScopes(t *testing.T) {
	for v := VersionFirst; v <= VersionCurrent; v++ {
		if got := PurposeAuthentication.Scope(v); got != "com.lyndir.masterpassword" {
			t.Errorf("v%d auth scope = %q", v, got)
		}
		if got := PurposeIdentification.Scope(v); got != "com.lyndir.masterpassword.login" {
			t.Errorf("v%d ident scope = %q", v, got)
		}
		if got := PurposeRecovery.Scope(v); got != "com.lyndir.masterpassword.answer" {
			t.Errorf("v%d recovery scope = %q", v, got)
		}
	}
}

func TestParsePurpose(t *testing.T) {
	for _, name := range []string{"a", "auth", "authentication"} {
		if p, err := ParsePurpose(name); err != nil || p != PurposeAuthentication {
			t.Errorf("ParsePurpose(%q) = %v, %v", name, p, err)
		}
	}
	if _, err := ParsePurpose("bogus"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParsePurpose(bogus) error = %v", err)
	}
}
