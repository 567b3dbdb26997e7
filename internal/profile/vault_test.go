package profile

import (
	"strings"
	"testing"
)

func TestVaultRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	v, err := NewVault(key)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	plaintext := []byte("CV: Go, Python, Kubernetes")
	sealed, err := v.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if string(sealed) == string(plaintext) {
		t.Fatal("Seal returned plaintext")
	}

	opened, err := v.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(opened) != string(plaintext) {
		t.Errorf("Open = %q, want %q", opened, plaintext)
	}

	// Two seals of the same plaintext differ (fresh nonce each time).
	sealed2, err := v.Seal(plaintext)
	if err != nil {
		t.Fatalf("second Seal: %v", err)
	}
	if string(sealed) == string(sealed2) {
		t.Error("two Seal calls produced identical ciphertext")
	}
}

func TestVaultWrongKeyFails(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()
	v1, err := NewVault(key1)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}
	v2, err := NewVault(key2)
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	sealed, err := v1.Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := v2.Open(sealed); err == nil {
		t.Fatal("Open with wrong key should fail")
	}
}

func TestNewVaultRejectsBadKeys(t *testing.T) {
	if _, err := NewVault("not-hex"); err == nil {
		t.Error("non-hex key accepted")
	}
	if _, err := NewVault(strings.Repeat("ab", 16)); err == nil {
		t.Error("16-byte key accepted")
	}
}
