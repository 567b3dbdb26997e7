package profile

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32

// Vault encrypts CV documents at rest with a symmetric secretbox key.
// A fresh random nonce is prepended to every ciphertext.
type Vault struct {
	key [keySize]byte
}

// NewVault builds a vault from a hex-encoded 32-byte key.
func NewVault(hexKey string) (*Vault, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding vault key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", keySize, len(raw))
	}

	v := &Vault{}
	copy(v.key[:], raw)
	return v, nil
}

// GenerateKey returns a fresh hex-encoded vault key.
func GenerateKey() (string, error) {
	var key [keySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return "", fmt.Errorf("generating vault key: %w", err)
	}
	return hex.EncodeToString(key[:]), nil
}

// Seal encrypts plaintext. The returned blob is nonce || ciphertext.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &v.key), nil
}

// Open decrypts a blob produced by Seal.
func (v *Vault) Open(blob []byte) ([]byte, error) {
	if len(blob) < 24 {
		return nil, fmt.Errorf("ciphertext too short: %d bytes", len(blob))
	}
	var nonce [24]byte
	copy(nonce[:], blob[:24])

	plaintext, ok := secretbox.Open(nil, blob[24:], &nonce, &v.key)
	if !ok {
		return nil, fmt.Errorf("ciphertext authentication failed")
	}
	return plaintext, nil
}
