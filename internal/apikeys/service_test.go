package apikeys

import "testing"

func TestParseToken_ValidFormat(t *testing.T) {
	keyID, secret, ok := parseToken("fbk_live_abc123_supersecretvalue")
	if !ok {
		t.Fatalf("expected valid token to parse")
	}
	if keyID != "abc123" {
		t.Fatalf("expected keyID=abc123, got %q", keyID)
	}
	if secret != "supersecretvalue" {
		t.Fatalf("expected secret=supersecretvalue, got %q", secret)
	}
}

func TestParseToken_SecretMayContainUnderscores(t *testing.T) {
	// base64.RawURLEncoding can emit '_'; Create keeps it out of key ids,
	// and SplitN(..., 4) must not truncate a secret that contains one.
	_, secret, ok := parseToken("fbk_live_abc123_part1_part2")
	if !ok {
		t.Fatalf("expected token to parse")
	}
	if secret != "part1_part2" {
		t.Fatalf("expected secret to retain trailing underscore segment, got %q", secret)
	}
}

func TestParseToken_RejectsWrongPrefix(t *testing.T) {
	if _, _, ok := parseToken("wrong_prefix_abc_def"); ok {
		t.Fatalf("expected wrong prefix to be rejected")
	}
}

func TestParseToken_RejectsMissingParts(t *testing.T) {
	cases := []string{
		"",
		"fbk_live",
		"fbk_live_onlykeyid",
		"fbk_live__",
	}
	for _, tc := range cases {
		if _, _, ok := parseToken(tc); ok {
			t.Fatalf("expected %q to be rejected", tc)
		}
	}
}

func TestPrincipal_HasScope(t *testing.T) {
	p := Principal{Scopes: []string{"fax:send", "fax:read"}}
	if !p.HasScope("fax:send") {
		t.Fatalf("expected fax:send to be granted")
	}
	if p.HasScope("keys:manage") {
		t.Fatalf("expected keys:manage to be denied")
	}
}

func TestPrincipal_AdminHasEveryScope(t *testing.T) {
	p := Principal{IsAdmin: true}
	if !p.HasScope("anything:at:all") {
		t.Fatalf("expected admin principal to hold every scope")
	}
}
