package crypt

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// GenerateState returns n random bytes hex-encoded, for use as an
// unguessable CSRF state identifier.
func GenerateState(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func HashPasswordWithSalt(password string) (hash string, salt string) {
	saltBytes := make([]byte, 16)
	_, _ = rand.Read(saltBytes)
	salt = hex.EncodeToString(saltBytes)

	hasher := sha256.New()
	hasher.Write([]byte(salt + password))
	return hex.EncodeToString(hasher.Sum(nil)), salt
}

func VerifyPasswordWithSalt(password, hash, salt string) bool {
	hasher := sha256.New()
	hasher.Write([]byte(salt + password))
	sum := hex.EncodeToString(hasher.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(sum), []byte(hash)) == 1
}
