package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// PayloadSealer encrypts webhook payloads at rest with AES-GCM.
// Sealed format: nonce || ciphertext || tag.
type PayloadSealer struct {
	gcm cipher.AEAD
}

// NewPayloadSealer expects a 16, 24 or 32 byte key (AES-128/192/256).
func NewPayloadSealer(key string) (*PayloadSealer, error) {
	k := []byte(key)
	if n := len(k); n != 16 && n != 24 && n != 32 {
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes; got %d", n)
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &PayloadSealer{gcm: gcm}, nil
}

// Seal encrypts plaintext under a fresh random nonce. additional binds the
// ciphertext to its row (the log id) so payloads cannot be swapped between rows.
func (s *PayloadSealer) Seal(plaintext, additional []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("rand nonce: %w", err)
	}
	return s.gcm.Seal(nonce, nonce, plaintext, additional), nil
}

func (s *PayloadSealer) Open(sealed, additional []byte) ([]byte, error) {
	ns := s.gcm.NonceSize()
	if len(sealed) < ns+s.gcm.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	pt, err := s.gcm.Open(nil, sealed[:ns], sealed[ns:], additional)
	if err != nil {
		return nil, fmt.Errorf("gcm open: %w", err)
	}
	return pt, nil
}
