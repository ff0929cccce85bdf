package crypto

import "testing"

func TestHashAndVerifyAPIKeySecret_RoundTrip(t *testing.T) {
	secret := "supersecretvalue123"

	hash, err := HashAPIKeySecret(secret)
	if err != nil {
		t.Fatalf("HashAPIKeySecret: %v", err)
	}

	ok, err := VerifyAPIKeySecret(secret, hash)
	if err != nil {
		t.Fatalf("VerifyAPIKeySecret: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching secret to verify")
	}
}

func TestVerifyAPIKeySecret_RejectsWrongSecret(t *testing.T) {
	hash, err := HashAPIKeySecret("correct-secret")
	if err != nil {
		t.Fatalf("HashAPIKeySecret: %v", err)
	}

	ok, err := VerifyAPIKeySecret("wrong-secret", hash)
	if err != nil {
		t.Fatalf("VerifyAPIKeySecret: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatched secret to fail verification")
	}
}

func TestVerifyAPIKeySecret_RejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"not-the-right-format",
		"scrypt$onlyonepart",
		"bcrypt$deadbeef$deadbeef",
	}
	for _, tc := range cases {
		if _, err := VerifyAPIKeySecret("anything", tc); err != ErrHashFormat {
			t.Fatalf("expected ErrHashFormat for %q, got %v", tc, err)
		}
	}
}

func TestHashAPIKeySecret_SaltVariesAcrossCalls(t *testing.T) {
	a, err := HashAPIKeySecret("same-secret")
	if err != nil {
		t.Fatalf("HashAPIKeySecret: %v", err)
	}
	b, err := HashAPIKeySecret("same-secret")
	if err != nil {
		t.Fatalf("HashAPIKeySecret: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct hashes for repeated hashing of the same secret")
	}
}

func TestRandomToken_ProducesDistinctURLSafeValues(t *testing.T) {
	a, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken: %v", err)
	}
	b, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct random tokens")
	}
	for _, c := range a {
		if c == '+' || c == '/' || c == '=' {
			t.Fatalf("expected URL-safe unpadded encoding, got char %q in %q", c, a)
		}
	}
}

func TestConstantTimeEqual(t *testing.T) {
	if !ConstantTimeEqual("abc", "abc") {
		t.Fatalf("expected equal strings to compare equal")
	}
	if ConstantTimeEqual("abc", "abd") {
		t.Fatalf("expected differing strings to compare unequal")
	}
	if ConstantTimeEqual("abc", "abcd") {
		t.Fatalf("expected differing-length strings to compare unequal")
	}
}
