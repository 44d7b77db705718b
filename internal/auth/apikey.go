// Package auth provides authentication primitives for the catalog API: random
// API key generation and bcrypt hashing for seeded user passwords. Keys are
// stored verbatim so quota accounting can charge the key row in the same
// statement that authenticates it; see internal/middleware/auth.go for the
// request-time logic.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyLength is the length of the random part of the API key in bytes
	APIKeyLength = 32

	// BcryptCost is the cost factor for bcrypt password hashing
	BcryptCost = 12
)

// GenerateAPIKey creates a new random API key with the given prefix.
// The key is shaped prefix_randomPart with a URL-safe base64 random part.
func GenerateAPIKey(prefix string) (string, error) {
	randomBytes := make([]byte, APIKeyLength)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	randomPart := base64.RawURLEncoding.EncodeToString(randomBytes)
	return fmt.Sprintf("%s_%s", prefix, randomPart), nil
}

// HashPassword hashes a user password with bcrypt
func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashBytes), nil
}

// CheckPassword reports whether a password matches the stored hash
func CheckPassword(password, storedHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password))
	return err == nil
}
