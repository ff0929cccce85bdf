package crypto

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/faxbot/faxbot/config"
)

// ArtifactClaims is embedded in a tokenized fetch URL. It lets a
// corrupt/missing job or inbound row fail closed, since the token carries
// its own expiry independent of the database — the stored token on that
// row remains the authoritative revocation check.
type ArtifactClaims struct {
	jwt.RegisteredClaims
	RecordID string `json:"rid"`
	Kind     string `json:"kind"` // "outbound" | "inbound"
}

func signingKey() []byte {
	return []byte(config.Get().Auth.TokenSigningKey)
}

// MintArtifactToken signs a short-lived token binding recordID to a TTL.
// The opaque string form is returned; the caller stores it verbatim in
// pdf_token/pdf_token_expires_at for the constant-time comparison required
// by the Tokenized Retrieval component.
func MintArtifactToken(recordID, kind string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := ArtifactClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		RecordID: recordID,
		Kind:     kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign artifact token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseArtifactToken validates signature and expiry and returns the claims.
// Callers must still compare the result against the stored token value
// before granting access — this only proves the token is well-formed and
// unexpired per its own claims.
func ParseArtifactToken(tokenString string) (*ArtifactClaims, error) {
	claims := &ArtifactClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}
