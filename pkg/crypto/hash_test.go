package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Test vectors from NIST FIPS 180-4 and NIST CAVP.
var sha256TestVectors = []struct {
	name     string
	message  string // hex-encoded input
	expected string // hex-encoded expected hash
}{
	{
		name:     "FIPS180-4_B1_abc",
		message:  "616263", // "abc"
		expected: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	},
	{
		name:     "FIPS180-4_B2_448bit",
		message:  "6162636462636465636465666465666765666768666768696768696a68696a6b696a6b6c6a6b6c6d6b6c6d6e6c6d6e6f6d6e6f706e6f7071",
		expected: "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1",
	},
	{
		name:     "CAVP_empty",
		message:  "",
		expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	},
	{
		name:     "CAVP_8bit",
		message:  "d3",
		expected: "28969cdfa74a12c82f3bad960b0b000aca2ac329deea5c2328ebc6f2ba9802c1",
	},
}

func TestSHA256(t *testing.T) {
	for _, tv := range sha256TestVectors {
		t.Run(tv.name, func(t *testing.T) {
			message, err := hex.DecodeString(tv.message)
			if err != nil {
				t.Fatalf("invalid test vector message: %v", err)
			}
			expected, err := hex.DecodeString(tv.expected)
			if err != nil {
				t.Fatalf("invalid test vector hash: %v", err)
			}

			got := SHA256(message)
			if !bytes.Equal(got[:], expected) {
				t.Errorf("SHA256() = %x, want %x", got, expected)
			}

			if !bytes.Equal(SHA256Slice(message), expected) {
				t.Errorf("SHA256Slice() mismatch")
			}
		})
	}
}

func TestNewSHA256Incremental(t *testing.T) {
	h := NewSHA256()
	h.Write([]byte("ab"))
	h.Write([]byte("c"))
	want := SHA256([]byte("abc"))
	if !bytes.Equal(h.Sum(nil), want[:]) {
		t.Errorf("incremental hash differs from one-shot")
	}
}
