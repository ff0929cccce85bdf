package docproc

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestTextToPostScript_EscapesParensAndBackslash(t *testing.T) {
	out := textToPostScript("fax (test) with \\backslash")

	if !strings.Contains(out, `\(test\)`) {
		t.Fatalf("expected parens to be escaped, got: %s", out)
	}
	if !strings.Contains(out, `\\backslash`) {
		t.Fatalf("expected backslash to be escaped, got: %s", out)
	}
}

func TestTextToPostScript_OneShowPerLine(t *testing.T) {
	out := textToPostScript("line one\nline two\nline three")

	if got := strings.Count(out, ") show"); got != 3 {
		t.Fatalf("expected 3 show calls for 3 lines, got %d", got)
	}
}

func TestProcessor_RunWrapsTimeoutAsConversionFailed(t *testing.T) {
	p := New("sleep").WithTimeout(10 * time.Millisecond)

	_, err := p.run(context.Background(), "1")
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !strings.Contains(err.Error(), "CONVERSION_FAILED") {
		t.Fatalf("expected ErrConversionFailed, got: %v", err)
	}
}

func TestProcessor_RunWrapsNonZeroExit(t *testing.T) {
	p := New("false")

	_, err := p.run(context.Background())
	if err == nil {
		t.Fatalf("expected error from non-zero exit")
	}
	if !strings.Contains(err.Error(), "CONVERSION_FAILED") {
		t.Fatalf("expected ErrConversionFailed, got: %v", err)
	}
}

func TestProcessor_TIFFToPDFUsesSeparateBinary(t *testing.T) {
	p := New("false").WithTIFFBin("false")

	err := p.TIFFToPDF(context.Background(), "/tmp/nonexistent.tiff", "/tmp/nonexistent-out.pdf")
	if err == nil {
		t.Fatalf("expected error from non-zero exit")
	}
	if !strings.Contains(err.Error(), "CONVERSION_FAILED") {
		t.Fatalf("expected ErrConversionFailed, got: %v", err)
	}
}
