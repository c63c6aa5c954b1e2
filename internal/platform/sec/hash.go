// Copyright (c) 2026 Shelfy. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side password hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32

	// SaltLength is the byte length of every freshly generated salt.
	SaltLength = 32
)

// GenerateSalt returns a fresh cryptographically random salt.
//
// A new salt is generated for every credential and for every password change,
// so no two password generations ever share one.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("sec: failed to generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword returns the Argon2id hash of password using the provided salt.
//
// The function is pure: identical (password, salt) inputs always yield an
// identical hash, and changing either input changes the output.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword recomputes the hash with the stored salt and compares it to
// the expected value in constant time.
func VerifyPassword(password string, salt, expected []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// GenerateSecureToken returns a hex-encoded random token of n source bytes.
//
// Used for opaque refresh tokens; never for password material.
func GenerateSecureToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashToken returns the SHA-256 digest of a refresh token, hex-encoded.
//
// Only the digest is persisted, so a leaked session store never exposes
// usable tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// # Hasher Port

// Argon2Hasher adapts the package-level hashing functions to the credential
// hasher port consumed by the user aggregate.
type Argon2Hasher struct{}

// GenerateSalt implements the hasher port.
func (Argon2Hasher) GenerateSalt() ([]byte, error) { return GenerateSalt() }

// Hash implements the hasher port.
func (Argon2Hasher) Hash(password string, salt []byte) []byte {
	return HashPassword(password, salt)
}
