// Package sip implements the self-hosted PBX outbound backend: Faxbot
// originates calls through Asterisk's AMI and transmits the converted
// TIFF directly over T.38/SIP, with no cloud intermediary.
package sip

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/faxbot/faxbot/internal/errors"
	"github.com/faxbot/faxbot/internal/provider"
)

// Config configures the AMI control connection and the shared secret
// guarding the internal PBX result-callback endpoints.
type Config struct {
	Host            string
	Port            int
	Username        string
	Password        string
	InternalSecret  string
	OriginateDialer string // e.g. "SIP/trunk" prefix the "to" number is appended to
}

type Provider struct {
	cfg    Config
	client *Client
}

func New(cfg Config) *Provider {
	return &Provider{
		cfg:    cfg,
		client: NewClient(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Run starts the persistent AMI control connection; callers should run
// this in its own goroutine for the service's lifetime.
func (p *Provider) Run(ctx context.Context) {
	p.client.Run(ctx)
}

func (p *Provider) Send(ctx context.Context, req provider.SendRequest) (provider.SendResult, error) {
	channel := fmt.Sprintf("%s/%s", p.cfg.OriginateDialer, req.ToNumber)

	ev, err := p.client.Originate(ctx, map[string]string{
		"Channel":  channel,
		"Context":  "faxbot-outbound",
		"Exten":    "send",
		"Priority": "1",
		"Variable": "FAXBOT_TIFF_PATH=" + req.TIFFPath + ",FAXBOT_JOB_ID=" + req.JobID,
		"Async":    "true",
	})
	if err != nil {
		return provider.SendResult{}, apperrors.Wrap(err, apperrors.ErrProviderSend)
	}

	uniqueID := ev.Get("Uniqueid")
	if uniqueID == "" {
		uniqueID = ev.Get("ActionID")
	}

	return provider.SendResult{ProviderSID: uniqueID}, nil
}

// GetStatus is unsupported: PBX status arrives exclusively via the
// internal outbound-result webhook, not by polling.
func (p *Provider) GetStatus(ctx context.Context, providerSID string) (provider.StatusResult, error) {
	return provider.StatusResult{}, provider.ErrNotSupported
}

// VerifyCallback checks the shared X-Internal-Secret header the
// internal Asterisk/FreeSWITCH result endpoints require instead of an
// HMAC body signature, since these calls originate from a trusted
// co-located dialplan rather than a public webhook.
func (p *Provider) VerifyCallback(r *http.Request, body []byte) error {
	got := r.Header.Get("X-Internal-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(p.cfg.InternalSecret)) != 1 {
		return apperrors.ErrInternalAuthFailed
	}
	return nil
}

// internalOutboundResult mirrors the body of POST
// /_internal/freeswitch/outbound_result.
type internalOutboundResult struct {
	JobID                          string `json:"job_id"`
	FaxStatus                      string `json:"fax_status"`
	FaxResultText                  string `json:"fax_result_text"`
	FaxDocumentTransferredPages    int    `json:"fax_document_transferred_pages"`
	UUID                           string `json:"uuid"`
}

func (p *Provider) ParseCallback(body []byte) (provider.CallbackEvent, error) {
	var parsed internalOutboundResult
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.CallbackEvent{}, apperrors.WithDetails(apperrors.ErrValidationFailed, "malformed internal outbound result")
	}

	sid := parsed.UUID
	if sid == "" {
		sid = parsed.JobID
	}

	pages := parsed.FaxDocumentTransferredPages
	return provider.CallbackEvent{
		ProviderSID: sid,
		EventType:   "outbound_result",
		Status:      parsed.FaxStatus,
		Pages:       &pages,
		Error:       parsed.FaxResultText,
	}, nil
}
