package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

var ErrHashFormat = errors.New("malformed key hash")

// HashAPIKeySecret derives a salted scrypt hash of an API key secret,
// encoded as "scrypt$<saltHex>$<hashHex>" for storage in key_hash.
func HashAPIKeySecret(secret string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	derived, err := scrypt.Key([]byte(secret), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key hash: %w", err)
	}

	return fmt.Sprintf("scrypt$%s$%s", hex.EncodeToString(salt), hex.EncodeToString(derived)), nil
}

// VerifyAPIKeySecret checks secret against a hash produced by
// HashAPIKeySecret using a constant-time comparison of the derived bytes.
func VerifyAPIKeySecret(secret, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 || parts[0] != "scrypt" {
		return false, ErrHashFormat
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, ErrHashFormat
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, ErrHashFormat
	}

	got, err := scrypt.Key([]byte(secret), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false, fmt.Errorf("failed to derive key hash: %w", err)
	}

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// RandomToken returns a URL-safe random token with at least nBytes of
// entropy (base64url, unpadded) — used for API key ids and secrets.
func RandomToken(nBytes int) (string, error) {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ConstantTimeEqual compares two strings without leaking timing information,
// for token and HMAC comparisons.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		// still run a comparison against a same-length buffer to avoid a
		// length-based timing signal disclosing near-matches
		subtle.ConstantTimeCompare([]byte(a), []byte(a))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
