// Package apikeys manages administrative API key lifecycle: minting,
// authentication, rotation, and revocation of the bearer tokens that
// gate every non-internal route.
package apikeys

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/faxbot/faxbot/config"
	"github.com/faxbot/faxbot/internal/crypto"
	"github.com/faxbot/faxbot/internal/database"
	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/models"
)

const (
	tokenPrefix  = "fbk_live"
	keyIDBytes   = 12
	secretBytes  = 24
)

// Principal is the authenticated identity attached to a request —
// either a stored APIKey row or the implicit bootstrap admin.
type Principal struct {
	KeyID     string
	Scopes    []string
	IsAdmin   bool
	IsBootstrap bool
}

func (p Principal) HasScope(scope string) bool {
	if p.IsAdmin {
		return true
	}
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Service implements API key CRUD and bearer-token verification.
type Service struct {
	repo   *database.APIKeyRepository
	bootstrapToken string
}

func NewService(repo *database.APIKeyRepository, bootstrapToken string) *Service {
	return &Service{repo: repo, bootstrapToken: bootstrapToken}
}

// Create mints a new API key, returning the full bearer token exactly
// once — only the hash is persisted.
func (s *Service) Create(ctx context.Context, name, owner, note string, scopes []string, expiresAt *time.Time) (string, *models.APIKey, error) {
	keyID, err := crypto.RandomToken(keyIDBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key id: %w", err)
	}
	// '_' separates the token's fields, so it must not appear in the key id.
	keyID = strings.ReplaceAll(keyID, "_", "-")
	secret, err := crypto.RandomToken(secretBytes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate key secret: %w", err)
	}

	hash, err := crypto.HashAPIKeySecret(secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash key secret: %w", err)
	}

	key := &models.APIKey{
		KeyID:     keyID,
		KeyHash:   hash,
		Name:      name,
		Owner:     owner,
		Note:      note,
		Scopes:    scopes,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return "", nil, err
	}

	token := fmt.Sprintf("%s_%s_%s", tokenPrefix, keyID, secret)
	return token, key, nil
}

// Authenticate validates a bearer token and returns the resulting
// Principal. The configured bootstrap token always authenticates as
// an implicit admin, independent of the api_keys table.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperrors.ErrAuthenticationRequired
	}

	if s.bootstrapToken != "" && crypto.ConstantTimeEqual(token, s.bootstrapToken) {
		return Principal{IsAdmin: true, IsBootstrap: true, Scopes: models.AllScopes}, nil
	}

	keyID, secret, ok := parseToken(token)
	if !ok {
		return Principal{}, apperrors.ErrInvalidToken
	}

	key, err := s.repo.GetByKeyID(ctx, keyID)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to look up API key: %w", err)
	}
	if key == nil {
		return Principal{}, apperrors.ErrInvalidToken
	}
	if key.RevokedAt != nil {
		return Principal{}, apperrors.ErrInvalidToken
	}
	if !key.Valid(time.Now()) {
		return Principal{}, apperrors.ErrTokenExpired
	}

	ok, err = crypto.VerifyAPIKeySecret(secret, key.KeyHash)
	if err != nil || !ok {
		return Principal{}, apperrors.ErrInvalidToken
	}

	// Best-effort; auth should not fail the request if this write lags.
	_ = s.repo.TouchLastUsed(ctx, keyID)

	return Principal{KeyID: key.KeyID, Scopes: key.Scopes}, nil
}

func parseToken(token string) (keyID, secret string, ok bool) {
	parts := strings.SplitN(token, "_", 4)
	if len(parts) != 4 || parts[0] != "fbk" || parts[1] != "live" {
		return "", "", false
	}
	if parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

func (s *Service) List(ctx context.Context) ([]models.APIKey, error) {
	return s.repo.List(ctx)
}

func (s *Service) Revoke(ctx context.Context, keyID string) error {
	return s.repo.Revoke(ctx, keyID)
}

// Rotate replaces a key's secret, returning the new bearer token.
func (s *Service) Rotate(ctx context.Context, keyID string) (string, error) {
	existing, err := s.repo.GetByKeyID(ctx, keyID)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", apperrors.ErrAPIKeyNotFound
	}

	secret, err := crypto.RandomToken(secretBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate key secret: %w", err)
	}
	hash, err := crypto.HashAPIKeySecret(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash key secret: %w", err)
	}

	if err := s.repo.Rotate(ctx, keyID, hash); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s_%s_%s", tokenPrefix, keyID, secret), nil
}

// NewFromConfig wires a Service from the global config, for cmd/faxbotd
// wiring where constructing the repository inline would be redundant.
func NewFromConfig(cfg *config.Config) *Service {
	repo := database.NewAPIKeyRepository(database.DB)
	return NewService(repo, cfg.Auth.BootstrapToken)
}
