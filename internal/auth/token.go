package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: aws_{secret}
// Example: aws_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b9c7a5f3d
const (
	// TokenSecretLen is the secret length (hex encoded 20 bytes).
	TokenSecretLen = 40
)

var (
	// ErrInvalidTokenFormat indicates the session token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^aws_[a-f0-9]{40}$`)
)

// GenerateSessionToken creates a new opaque session token.
// The plaintext goes into the cookie; only its fingerprint is stored.
func GenerateSessionToken() (string, error) {
	secretBytes := make([]byte, 20)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	return "aws_" + hex.EncodeToString(secretBytes), nil
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// Fingerprint returns a stable SHA256 fingerprint of a plaintext token.
// Safe to use as a store key; the plaintext never leaves the cookie.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16]) // Use first 16 bytes (32 hex chars)
}
