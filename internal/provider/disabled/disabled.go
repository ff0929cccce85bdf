// Package disabled implements the test/disabled outbound backend: it
// accepts every send without contacting anything external, assigning a
// synthetic provider SID. jobs.Service marks a job sent through it
// SUCCESS at once, since no callback ever follows.
package disabled

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/faxbot/faxbot/internal/provider"
)

type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Send(ctx context.Context, req provider.SendRequest) (provider.SendResult, error) {
	sid, err := randomSID()
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("disabled provider: %w", err)
	}
	return provider.SendResult{ProviderSID: sid}, nil
}

func (p *Provider) GetStatus(ctx context.Context, providerSID string) (provider.StatusResult, error) {
	return provider.StatusResult{}, provider.ErrNotSupported
}

func (p *Provider) VerifyCallback(r *http.Request, body []byte) error {
	return nil
}

func (p *Provider) ParseCallback(body []byte) (provider.CallbackEvent, error) {
	return provider.CallbackEvent{}, provider.ErrNotSupported
}

func randomSID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return "disabled-" + hex.EncodeToString(b[:]), nil
}
