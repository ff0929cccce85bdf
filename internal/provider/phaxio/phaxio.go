// Package phaxio implements the URL-fetch cloud outbound backend:
// Faxbot hands Phaxio a short-lived tokenized URL and Phaxio fetches
// the PDF itself rather than receiving the bytes directly.
package phaxio

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/provider"
)

const baseURL = "https://api.phaxio.com/v2/faxes"

// Config holds the credentials and endpoint needed to talk to Phaxio.
type Config struct {
	APIKey      string
	APISecret   string
	CallbackURL string
}

// Provider implements provider.Provider against the Phaxio API.
type Provider struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

// New builds a Phaxio provider. The limiter caps outbound requests at
// 5/sec with a burst of 5, matching Phaxio's documented rate ceiling —
// paced client-side instead of only reacting to 429s.
func New(cfg Config) *Provider {
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 15 * time.Second}).DialContext,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
}

func (p *Provider) Send(ctx context.Context, req provider.SendRequest) (provider.SendResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return provider.SendResult{}, fmt.Errorf("phaxio: rate limiter wait: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("api_key", p.cfg.APIKey)
	_ = w.WriteField("api_secret", p.cfg.APISecret)
	_ = w.WriteField("to", req.ToNumber)
	_ = w.WriteField("content_url", req.PDFURL)
	if p.cfg.CallbackURL != "" {
		_ = w.WriteField("callback_url", p.cfg.CallbackURL)
	}
	if err := w.Close(); err != nil {
		return provider.SendResult{}, fmt.Errorf("phaxio: failed to build request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, &body)
	if err != nil {
		return provider.SendResult{}, fmt.Errorf("phaxio: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return provider.SendResult{}, apperrors.Wrap(err, apperrors.ErrProviderSend)
	}
	defer resp.Body.Close()

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			ID int64 `json:"id"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.SendResult{}, apperrors.WithDetails(apperrors.ErrProviderSend, "malformed response")
	}
	if !parsed.Success || resp.StatusCode >= 300 {
		return provider.SendResult{}, apperrors.WithDetails(apperrors.ErrProviderSend, parsed.Message)
	}

	return provider.SendResult{ProviderSID: fmt.Sprintf("%d", parsed.Data.ID)}, nil
}

func (p *Provider) GetStatus(ctx context.Context, providerSID string) (provider.StatusResult, error) {
	statusURL := fmt.Sprintf("%s/%s", baseURL, url.PathEscape(providerSID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return provider.StatusResult{}, fmt.Errorf("phaxio: failed to build status request: %w", err)
	}
	q := httpReq.URL.Query()
	q.Set("api_key", p.cfg.APIKey)
	q.Set("api_secret", p.cfg.APISecret)
	httpReq.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return provider.StatusResult{}, apperrors.Wrap(err, apperrors.ErrProviderSend)
	}
	defer resp.Body.Close()

	var parsed struct {
		Data struct {
			Status    string `json:"status"`
			NumPages  int    `json:"num_pages"`
			ErrorType string `json:"error_type"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return provider.StatusResult{}, apperrors.WithDetails(apperrors.ErrProviderSend, "malformed status response")
	}

	pages := parsed.Data.NumPages
	return provider.StatusResult{
		Status: parsed.Data.Status,
		Pages:  &pages,
		Error:  parsed.Data.ErrorType,
	}, nil
}

// VerifyCallback validates Phaxio's X-Phaxio-Signature header: an
// HMAC-SHA256 over the raw body, keyed by the API secret.
func (p *Provider) VerifyCallback(r *http.Request, body []byte) error {
	sig := r.Header.Get("X-Phaxio-Signature")
	if sig == "" {
		return apperrors.ErrWebhookSignatureInvalid
	}

	mac := hmac.New(sha256.New, []byte(p.cfg.APISecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return apperrors.ErrWebhookSignatureInvalid
	}
	return nil
}

// InboundFax is Phaxio's fax_received callback payload, parsed down to
// the fields the inbound pipeline needs.
type InboundFax struct {
	ProviderSID string
	FromNumber  string
	ToNumber    string
	Pages       *int
	MediaURL    string
}

// ParseInbound extracts the received-fax fields and media URL from a
// Phaxio fax_received callback body.
func (p *Provider) ParseInbound(body []byte) (InboundFax, error) {
	var parsed struct {
		Fax struct {
			ID        int64  `json:"id"`
			Direction string `json:"direction"`
			FromNumber string `json:"from_number"`
			ToNumber   string `json:"to_number"`
			NumPages   int    `json:"num_pages"`
			Media      []struct {
				URL string `json:"url"`
			} `json:"media"`
		} `json:"fax"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return InboundFax{}, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed phaxio inbound callback")
	}

	var mediaURL string
	if len(parsed.Fax.Media) > 0 {
		mediaURL = parsed.Fax.Media[0].URL
	}

	pages := parsed.Fax.NumPages
	return InboundFax{
		ProviderSID: fmt.Sprintf("%d", parsed.Fax.ID),
		FromNumber:  parsed.Fax.FromNumber,
		ToNumber:    parsed.Fax.ToNumber,
		Pages:       &pages,
		MediaURL:    mediaURL,
	}, nil
}

// FetchMedia downloads a received fax's PDF from Phaxio, authenticating
// with the same API key/secret pair used for outbound dispatch.
func (p *Provider) FetchMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("phaxio: failed to build media request: %w", err)
	}
	httpReq.SetBasicAuth(p.cfg.APIKey, p.cfg.APISecret)

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
		return nil, fmt.Errorf("phaxio: failed to read media body: %w", err)
	}
	return data, nil
}

func (p *Provider) ParseCallback(body []byte) (provider.CallbackEvent, error) {
	var parsed struct {
		Success bool `json:"success"`
		Fax     struct {
			ID       int64  `json:"id"`
			Status   string `json:"status"`
			NumPages int    `json:"num_pages"`
		} `json:"fax"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.CallbackEvent{}, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed phaxio callback")
	}

	pages := parsed.Fax.NumPages
	status := "FAILED"
	if parsed.Success {
		status = "SUCCESS"
	}

	return provider.CallbackEvent{
		ProviderSID: fmt.Sprintf("%d", parsed.Fax.ID),
		EventType:   "fax_status_callback",
		Status:      status,
		Pages:       &pages,
	}, nil
}
