package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

var ErrCipherTextTooShort = errors.New("cipher text too short")

// Sealer encrypts short values with AES-256-GCM. The output is URL-safe
// base64 so it can travel in a cookie.
type Sealer struct {
	aead cipher.AEAD
}

func NewSealer(key string) (*Sealer, error) {
	if len(key) != 32 {
		return nil, errors.New("NewSealer: key must be 32 characters long for AES-256 encryption")
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("NewSealer: failed to create cipher block: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("NewSealer: failed to create GCM block: %w", err)
	}
	return &Sealer{aead: aesGCM}, nil
}

func (s *Sealer) Encrypt(plainText string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("Encrypt: failed to generate nonce: %w", err)
	}
	cipherText := s.aead.Seal(nonce, nonce, []byte(plainText), nil)
	return base64.RawURLEncoding.EncodeToString(cipherText), nil
}

func (s *Sealer) Decrypt(encrypted string) (string, error) {
	cipherData, err := base64.RawURLEncoding.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("Decrypt: failed to base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(cipherData) < nonceSize {
		return "", ErrCipherTextTooShort
	}

	nonce, cipherText := cipherData[:nonceSize], cipherData[nonceSize:]
	plainText, err := s.aead.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", fmt.Errorf("Decrypt: failed to decrypt value: %w", err)
	}
	return string(plainText), nil
}

func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
