package jobs

import "testing"

func TestValidateDestination(t *testing.T) {
	valid := []string{"+15551234567", "15551234567", "+442071838750"}
	for _, v := range valid {
		if err := validateDestination(v); err != nil {
			t.Errorf("expected %q to be valid, got %v", v, err)
		}
	}

	invalid := []string{"", "abc", "555", "+", "123-456-7890"}
	for _, v := range invalid {
		if err := validateDestination(v); err == nil {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestValidateSize_ExactlyAtLimitAccepted(t *testing.T) {
	limit := 10
	if err := validateSize(limit*1024*1024, limit); err != nil {
		t.Fatalf("expected size exactly at limit to be accepted, got %v", err)
	}
}

func TestValidateSize_OneByteOverLimitRejected(t *testing.T) {
	limit := 10
	if err := validateSize(limit*1024*1024+1, limit); err == nil {
		t.Fatalf("expected size one byte over limit to be rejected")
	}
}

func TestValidateContentType_PDFAccepted(t *testing.T) {
	isText, err := validateContentType("application/pdf", "doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isText {
		t.Fatalf("expected PDF to not be classified as text")
	}
}

func TestValidateContentType_TextAccepted(t *testing.T) {
	isText, err := validateContentType("text/plain", "doc.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isText {
		t.Fatalf("expected text/plain to be classified as text")
	}
}

func TestValidateContentType_OtherRejected(t *testing.T) {
	if _, err := validateContentType("image/png", "doc.png"); err == nil {
		t.Fatalf("expected unsupported media type to be rejected")
	}
}
