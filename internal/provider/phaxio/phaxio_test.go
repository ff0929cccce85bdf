package phaxio

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testProvider() *Provider {
	return New(Config{APIKey: "key", APISecret: "secret", CallbackURL: "https://example.test/callback"})
}

func TestVerifyCallback_AcceptsValidSignature(t *testing.T) {
	p := testProvider()
	body := []byte(`{"success":true,"fax":{"id":123,"status":"success"}}`)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/phaxio-callback", bytes.NewReader(body))
	req.Header.Set("X-Phaxio-Signature", sig)

	if err := p.VerifyCallback(req, body); err != nil {
		t.Fatalf("expected valid signature to verify, got %v", err)
	}
}

func TestVerifyCallback_RejectsMissingSignature(t *testing.T) {
	p := testProvider()
	body := []byte(`{"success":true}`)
	req := httptest.NewRequest(http.MethodPost, "/phaxio-callback", bytes.NewReader(body))

	if err := p.VerifyCallback(req, body); err == nil {
		t.Fatalf("expected error for missing signature header")
	}
}

func TestVerifyCallback_RejectsWrongSignature(t *testing.T) {
	p := testProvider()
	body := []byte(`{"success":true}`)
	req := httptest.NewRequest(http.MethodPost, "/phaxio-callback", bytes.NewReader(body))
	req.Header.Set("X-Phaxio-Signature", "deadbeef")

	if err := p.VerifyCallback(req, body); err == nil {
		t.Fatalf("expected error for wrong signature")
	}
}

func TestParseCallback_SuccessStatus(t *testing.T) {
	p := testProvider()
	body := []byte(`{"success":true,"fax":{"id":42,"status":"success","num_pages":3}}`)

	event, err := p.ParseCallback(body)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if event.ProviderSID != "42" {
		t.Fatalf("expected ProviderSID=42, got %q", event.ProviderSID)
	}
	if event.Status != "SUCCESS" {
		t.Fatalf("expected Status=SUCCESS, got %q", event.Status)
	}
	if event.Pages == nil || *event.Pages != 3 {
		t.Fatalf("expected Pages=3, got %v", event.Pages)
	}
}

func TestParseCallback_FailureStatus(t *testing.T) {
	p := testProvider()
	body := []byte(`{"success":false,"fax":{"id":7,"status":"failed"}}`)

	event, err := p.ParseCallback(body)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if event.Status != "FAILED" {
		t.Fatalf("expected Status=FAILED, got %q", event.Status)
	}
}

func TestParseCallback_RejectsMalformedBody(t *testing.T) {
	p := testProvider()
	if _, err := p.ParseCallback([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestParseInbound_ExtractsMediaURL(t *testing.T) {
	p := testProvider()
	body := []byte(`{"fax":{"id":55,"direction":"received","from_number":"+15551230000","to_number":"+15559998888","num_pages":2,"media":[{"url":"https://api.phaxio.com/media/55"}]}}`)

	inbound, err := p.ParseInbound(body)
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}
	if inbound.ProviderSID != "55" {
		t.Fatalf("expected ProviderSID=55, got %q", inbound.ProviderSID)
	}
	if inbound.FromNumber != "+15551230000" || inbound.ToNumber != "+15559998888" {
		t.Fatalf("unexpected from/to: %+v", inbound)
	}
	if inbound.MediaURL != "https://api.phaxio.com/media/55" {
		t.Fatalf("expected media URL to be extracted, got %q", inbound.MediaURL)
	}
	if inbound.Pages == nil || *inbound.Pages != 2 {
		t.Fatalf("expected Pages=2, got %v", inbound.Pages)
	}
}

func TestParseInbound_NoMediaLeavesURLEmpty(t *testing.T) {
	p := testProvider()
	body := []byte(`{"fax":{"id":9,"media":[]}}`)

	inbound, err := p.ParseInbound(body)
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}
	if inbound.MediaURL != "" {
		t.Fatalf("expected empty media URL, got %q", inbound.MediaURL)
	}
}

func TestFetchMedia_SendsBasicAuthAndReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("%PDF-1.4 fake content"))
	}))
	defer srv.Close()

	p := testProvider()
	data, err := p.FetchMedia(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchMedia: %v", err)
	}
	if string(data) != "%PDF-1.4 fake content" {
		t.Fatalf("unexpected media body: %q", data)
	}
}

func TestFetchMedia_RejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := testProvider()
	if _, err := p.FetchMedia(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for non-2xx media response")
	}
}
