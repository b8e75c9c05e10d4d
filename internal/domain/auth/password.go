package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// HashPassword derives a scrypt hash with a fresh random salt. The
// stored form is "hexhash.hexsalt".
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// VerifyPassword recomputes the hash with the stored salt and compares
// in constant time. Malformed stored values verify as false.
func VerifyPassword(plaintext, stored string) bool {
	hashHex, saltHex, found := strings.Cut(stored, ".")
	if !found {
		return false
	}

	hash, err := hex.DecodeString(hashHex)
	if err != nil || len(hash) == 0 {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}

	key, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, len(hash))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(hash, key) == 1
}
