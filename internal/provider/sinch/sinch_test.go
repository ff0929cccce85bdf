package sinch

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyCallback_HMACMode(t *testing.T) {
	p := New(Config{HMACSecret: "whsec"}, nil)
	body := []byte(`{"id":"fax1","status":"DELIVERED"}`)

	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/sinch-callback", bytes.NewReader(body))
	req.Header.Set("X-Sinch-Signature", sig)

	if err := p.VerifyCallback(req, body); err != nil {
		t.Fatalf("expected valid HMAC signature to verify, got %v", err)
	}
}

func TestVerifyCallback_HMACMode_RejectsWrongSignature(t *testing.T) {
	p := New(Config{HMACSecret: "whsec"}, nil)
	body := []byte(`{"id":"fax1"}`)
	req := httptest.NewRequest(http.MethodPost, "/sinch-callback", bytes.NewReader(body))
	req.Header.Set("X-Sinch-Signature", "deadbeef")

	if err := p.VerifyCallback(req, body); err == nil {
		t.Fatalf("expected error for wrong HMAC signature")
	}
}

func TestVerifyCallback_BasicAuthMode(t *testing.T) {
	p := New(Config{BasicUser: "hookuser", BasicPass: "hookpass"}, nil)
	body := []byte(`{"id":"fax1"}`)
	req := httptest.NewRequest(http.MethodPost, "/sinch-callback", bytes.NewReader(body))
	req.SetBasicAuth("hookuser", "hookpass")

	if err := p.VerifyCallback(req, body); err != nil {
		t.Fatalf("expected valid basic auth to verify, got %v", err)
	}
}

func TestVerifyCallback_BasicAuthMode_RejectsWrongCreds(t *testing.T) {
	p := New(Config{BasicUser: "hookuser", BasicPass: "hookpass"}, nil)
	body := []byte(`{"id":"fax1"}`)
	req := httptest.NewRequest(http.MethodPost, "/sinch-callback", bytes.NewReader(body))
	req.SetBasicAuth("hookuser", "wrongpass")

	if err := p.VerifyCallback(req, body); err == nil {
		t.Fatalf("expected error for wrong basic auth credentials")
	}
}

func TestParseCallback_ExtractsFields(t *testing.T) {
	p := New(Config{}, nil)
	body := []byte(`{"id":"fax-abc","status":"FAILED","numberOfPages":4,"errorCode":"busy"}`)

	event, err := p.ParseCallback(body)
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if event.ProviderSID != "fax-abc" {
		t.Fatalf("expected ProviderSID=fax-abc, got %q", event.ProviderSID)
	}
	if event.Status != "FAILED" {
		t.Fatalf("expected Status=FAILED, got %q", event.Status)
	}
	if event.Pages == nil || *event.Pages != 4 {
		t.Fatalf("expected Pages=4, got %v", event.Pages)
	}
	if event.Error != "busy" {
		t.Fatalf("expected Error=busy, got %q", event.Error)
	}
}

func TestParseCallback_RejectsMalformedBody(t *testing.T) {
	p := New(Config{}, nil)
	if _, err := p.ParseCallback([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestParseInbound_ExtractsMediaURL(t *testing.T) {
	p := New(Config{}, nil)
	body := []byte(`{"id":"in-1","from":"+15551112222","to":"+15553334444","numberOfPages":1,"inbound":{"fileUrl":"https://fax.api.sinch.com/media/in-1"}}`)

	inbound, err := p.ParseInbound(body)
	if err != nil {
		t.Fatalf("ParseInbound: %v", err)
	}
	if inbound.MediaURL != "https://fax.api.sinch.com/media/in-1" {
		t.Fatalf("expected media URL to be extracted, got %q", inbound.MediaURL)
	}
	if inbound.FromNumber != "+15551112222" || inbound.ToNumber != "+15553334444" {
		t.Fatalf("unexpected from/to: %+v", inbound)
	}
}

func TestParseInbound_RejectsMalformedBody(t *testing.T) {
	p := New(Config{}, nil)
	if _, err := p.ParseInbound([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed inbound body")
	}
}
