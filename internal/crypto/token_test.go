package crypto

import (
	"testing"
	"time"
)

func TestMintAndParseArtifactToken_RoundTrip(t *testing.T) {
	token, expiresAt, err := MintArtifactToken("job-123", "job", time.Hour)
	if err != nil {
		t.Fatalf("MintArtifactToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future")
	}

	claims, err := ParseArtifactToken(token)
	if err != nil {
		t.Fatalf("ParseArtifactToken: %v", err)
	}
	if claims.RecordID != "job-123" {
		t.Fatalf("expected RecordID=job-123, got %q", claims.RecordID)
	}
	if claims.Kind != "job" {
		t.Fatalf("expected Kind=job, got %q", claims.Kind)
	}
}

func TestParseArtifactToken_RejectsExpiredToken(t *testing.T) {
	token, _, err := MintArtifactToken("inbound-456", "inbound", -time.Minute)
	if err != nil {
		t.Fatalf("MintArtifactToken: %v", err)
	}

	if _, err := ParseArtifactToken(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseArtifactToken_RejectsGarbage(t *testing.T) {
	if _, err := ParseArtifactToken("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
