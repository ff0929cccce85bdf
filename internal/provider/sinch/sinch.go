// Package sinch implements the direct-upload cloud outbound backend:
// Faxbot pushes the PDF bytes to Sinch directly rather than handing
// out a fetch URL.
package sinch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/provider"
	"github.com/faxbot/faxbot/internal/storage"
)

const baseURLTemplate = "https://fax.api.sinch.com/v3/projects/%s/faxes"

// Config holds Sinch project credentials and callback auth options.
// Exactly one of BasicUser/HMACSecret is normally set.
type Config struct {
	ProjectID  string
	APIToken   string
	BasicUser  string
	BasicPass  string
	HMACSecret string
}

type Provider struct {
	cfg     Config
	store   storage.Provider
	client  *http.Client
	limiter *rate.Limiter
}

func New(cfg Config, store storage.Provider) *Provider {
	return &Provider{
		cfg:     cfg,
		store:   store,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
}

func (p *Provider) Send(ctx context.Context, req provider.SendRequest) (provider.SendResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return provider.SendResult{}, fmt.Errorf("sinch: rate limiter wait: %w", err)
	}

	f, err := p.store.Open(ctx, req.PDFPath)
	if err != nil {
		return provider.SendResult{}, apperrors.WithDetails(apperrors.ErrStorageIO, "could not open PDF for upload")
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("to", req.ToNumber)

	part, err := w.CreateFormFile("file", "fax.pdf")
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("sinch: failed to build multipart body: %w", err)
	}
	if _, err := part.ReadFrom(f); err != nil {
		return provider.SendResult{}, fmt.Errorf("sinch: failed to read PDF into request: %w", err)
	}
	if err := w.Close(); err != nil {
		return provider.SendResult{}, fmt.Errorf("sinch: failed to finalize request body: %w", err)
	}

	url := fmt.Sprintf(baseURLTemplate, p.cfg.ProjectID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("sinch: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return provider.SendResult{}, apperrors.Wrap(err, apperrors.ErrProviderSend)
	}
	defer resp.Body.Close()

	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.SendResult{}, apperrors.WithDetails(apperrors.ErrProviderSend, "malformed response")
	}
	if resp.StatusCode >= 300 {
		return provider.SendResult{}, apperrors.WithDetails(apperrors.ErrProviderSend, parsed.Status)
	}

	return provider.SendResult{ProviderSID: parsed.ID}, nil
}

func (p *Provider) GetStatus(ctx context.Context, providerSID string) (provider.StatusResult, error) {
	url := fmt.Sprintf(baseURLTemplate, p.cfg.ProjectID) + "/" + providerSID

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return provider.StatusResult{}, fmt.Errorf("sinch: failed to build status request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return provider.StatusResult{}, apperrors.Wrap(err, apperrors.ErrProviderSend)
	}
	defer resp.Body.Close()

	var parsed struct {
		Status string `json:"status"`
		Pages  int    `json:"numberOfPages"`
		Error  string `json:"errorCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.StatusResult{}, apperrors.WithDetails(apperrors.ErrProviderSend, "malformed status response")
	}

	pages := parsed.Pages
	return provider.StatusResult{Status: parsed.Status, Pages: &pages, Error: parsed.Error}, nil
}

// VerifyCallback supports either HTTP Basic auth or an HMAC-SHA256
// signature over the raw body, per whichever is configured.
func (p *Provider) VerifyCallback(r *http.Request, body []byte) error {
	if p.cfg.HMACSecret != "" {
		sig := r.Header.Get("X-Sinch-Signature")
		if sig == "" {
			return apperrors.ErrWebhookSignatureInvalid
		}
		mac := hmac.New(sha256.New, []byte(p.cfg.HMACSecret))
		mac.Write(body)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(sig), []byte(expected)) {
			return apperrors.ErrWebhookSignatureInvalid
		}
		return nil
	}

	if p.cfg.BasicUser != "" {
		user, pass, ok := r.BasicAuth()
		if !ok {
			return apperrors.ErrWebhookSignatureInvalid
		}
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(p.cfg.BasicUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(p.cfg.BasicPass)) == 1
		if !userOK || !passOK {
			return apperrors.ErrWebhookSignatureInvalid
		}
		return nil
	}

	return nil
}

// InboundFax is Sinch's inbound-fax callback payload, parsed down to
// the fields the inbound pipeline needs.
type InboundFax struct {
	ProviderSID string
	FromNumber  string
	ToNumber    string
	Pages       *int
	MediaURL    string
}

// ParseInbound extracts the received-fax fields and media URL from a
// Sinch inbound callback body.
func (p *Provider) ParseInbound(body []byte) (InboundFax, error) {
	var parsed struct {
		ID     string `json:"id"`
		From   string `json:"from"`
		To     string `json:"to"`
		Pages  int    `json:"numberOfPages"`
		Inbound struct {
			FileURL string `json:"fileUrl"`
		} `json:"inbound"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return InboundFax{}, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed sinch inbound callback")
	}

	pages := parsed.Pages
	return InboundFax{
		ProviderSID: parsed.ID,
		FromNumber:  parsed.From,
		ToNumber:    parsed.To,
		Pages:       &pages,
		MediaURL:    parsed.Inbound.FileURL,
	}, nil
}

// FetchMedia downloads a received fax's PDF from Sinch, authenticating
// with the same project bearer token used for outbound dispatch.
func (p *Provider) FetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("sinch: failed to build media request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrProviderSend)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, apperrors.WithDetails(apperrors.ErrProviderSend, "media fetch failed")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sinch: failed to read media body: %w", err)
	}
	return data, nil
}

func (p *Provider) ParseCallback(body []byte) (provider.CallbackEvent, error) {
	var parsed struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Pages  int    `json:"numberOfPages"`
		Error  string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.CallbackEvent{}, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed sinch callback")
	}

	pages := parsed.Pages
	return provider.CallbackEvent{
		ProviderSID: parsed.ID,
		EventType:   "fax.status",
		Status:      parsed.Status,
		Pages:       &pages,
		Error:       parsed.Error,
	}, nil
}
