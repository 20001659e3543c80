package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// RandomToken returns n random bytes hex encoded.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("RandomToken: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SecureCompare reports whether a and b are equal without leaking where
// they differ. Both sides are hashed first so length is not leaked either.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(a)), []byte(Hash(b))) == 1
}
