package marshal

import (
	"strings"
	"testing"

	"github.com/mpw-go/mpw/pkg/algorithm"
)

// Device-private state never leaves the device of origin: neither the
// ciphertext nor the plaintext may appear in a written file, redacted
// or not. Only export-content state (personal passwords) is written.
func TestDevicePrivateContentWithheld(t *testing.T) {
	u := authedUser(t)
	site := u.AddSite("device.example")
	site.Type = algorithm.TypeStoredDevice
	key, err := u.MasterKey(u.Algorithm)
	if err != nil {
		t.Fatal(err)
	}
	site.Content, err = algorithm.SiteState(key, site.Name, site.Counter,
		algorithm.PurposeAuthentication, "", site.Type, "device token")
	if err != nil {
		t.Fatal(err)
	}

	for _, redacted := range []bool{true, false} {
		u.Redacted = redacted
		for _, format := range []Format{FormatFlat, FormatJSON} {
			out, err := WriteUser(u, format)
			if err != nil {
				t.Fatalf("redacted=%v %v: %v", redacted, format, err)
			}
			if strings.Contains(string(out), site.Content) {
				t.Errorf("redacted=%v %v: device-private ciphertext exported", redacted, format)
			}
			if strings.Contains(string(out), "device token") {
				t.Errorf("redacted=%v %v: device-private plaintext exported", redacted, format)
			}
		}
	}
}

func TestResetUserAdoptsNewSecret(t *testing.T) {
	u := authedUser(t)
	site := u.AddSite("stored.example")
	site.Type = algorithm.TypeStoredPersonal
	key, err := u.MasterKey(u.Algorithm)
	if err != nil {
		t.Fatal(err)
	}
	site.Content, err = algorithm.SiteState(key, site.Name, site.Counter,
		algorithm.PurposeAuthentication, "", site.Type, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	u.AddSite("plain.example")

	out, err := WriteUser(u, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	const newSecret = "brand new master secret"
	reset, err := ResetUser(out, FormatJSON, newSecret)
	if err != nil {
		t.Fatalf("ResetUser() error: %v", err)
	}
	defer reset.Wipe()

	if strings.EqualFold(reset.KeyID, u.KeyID) {
		t.Error("key ID not replaced")
	}
	// Redacted stateful content is undecryptable under the new key and
	// must be dropped; plain sites survive untouched.
	if got := reset.FindSite("stored.example"); got.Content != "" {
		t.Errorf("stale stateful content kept: %q", got.Content)
	}
	if reset.FindSite("plain.example") == nil {
		t.Error("template site lost in reset")
	}

	// The reset user now reads back under the new secret.
	out2, err := WriteUser(reset, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ReadUser(out2, FormatAuto, newSecret)
	if err != nil {
		t.Fatalf("re-read under new secret: %v", err)
	}
	back.Wipe()
}

// An unredacted export carries stateful plaintext, so a reset can
// re-encrypt it under the new key instead of dropping it.
func TestResetUserKeepsVisibleStatefulContent(t *testing.T) {
	u := authedUser(t)
	u.Redacted = false
	site := u.AddSite("stored.example")
	site.Type = algorithm.TypeStoredPersonal
	key, err := u.MasterKey(u.Algorithm)
	if err != nil {
		t.Fatal(err)
	}
	site.Content, err = algorithm.SiteState(key, site.Name, site.Counter,
		algorithm.PurposeAuthentication, "", site.Type, "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	out, err := WriteUser(u, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	const newSecret = "brand new master secret"
	reset, err := ResetUser(out, FormatJSON, newSecret)
	if err != nil {
		t.Fatal(err)
	}
	defer reset.Wipe()

	got := reset.FindSite("stored.example")
	newKey, err := reset.MasterKey(got.Algorithm)
	if err != nil {
		t.Fatal(err)
	}
	plaintext, err := algorithm.SiteResult(newKey, got.Name, got.Counter,
		algorithm.PurposeAuthentication, "", got.Type, got.Content)
	if err != nil {
		t.Fatal(err)
	}
	if plaintext != "hunter2" {
		t.Errorf("re-encrypted content = %q, want hunter2", plaintext)
	}
}
