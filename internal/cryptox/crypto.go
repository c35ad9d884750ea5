// Package cryptox holds the one-way transforms used for credentials:
// the security-answer digest computed on the client and the password
// hashing done by the identity service.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DigestLength is the length of a hex-encoded answer digest.
const DigestLength = sha256.Size * 2

// ErrPasswordMismatch is returned by ComparePassword for a wrong password.
var ErrPasswordMismatch = errors.New("password mismatch")

// HashSecurityAnswer normalizes answer (lower case, surrounding whitespace
// removed) and returns its SHA-256 digest as lowercase hex, so "Paris " and
// "paris" produce the same value.
func HashSecurityAnswer(answer string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(answer))))
	return hex.EncodeToString(sum[:])
}

// IsDigest reports whether s looks like a value produced by HashSecurityAnswer.
func IsDigest(s string) bool {
	if len(s) != DigestLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil && strings.ToLower(s) == s
}

// CompareDigest compares two digests in constant time.
func CompareDigest(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
}

// ComparePassword checks password against a bcrypt hash.
func ComparePassword(hash, password []byte) error {
	err := bcrypt.CompareHashAndPassword(hash, password)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
