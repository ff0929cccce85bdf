package webhook

import (
	"testing"

	"github.com/faxbot/faxbot/internal/models"
)

func TestNormalizeStatus_MapsKnownSuccessVariants(t *testing.T) {
	for _, s := range []string{"SUCCESS", "success", "delivered", "completed"} {
		if got := normalizeStatus(s); got != models.JobStatusSuccess {
			t.Fatalf("normalizeStatus(%q) = %q, want %q", s, got, models.JobStatusSuccess)
		}
	}
}

func TestNormalizeStatus_MapsKnownFailureVariants(t *testing.T) {
	for _, s := range []string{"FAILED", "failed", "error"} {
		if got := normalizeStatus(s); got != models.JobStatusFailed {
			t.Fatalf("normalizeStatus(%q) = %q, want %q", s, got, models.JobStatusFailed)
		}
	}
}

func TestNormalizeStatus_UnknownDefaultsToFailed(t *testing.T) {
	if got := normalizeStatus("something-unexpected"); got != models.JobStatusFailed {
		t.Fatalf("normalizeStatus(unknown) = %q, want %q", got, models.JobStatusFailed)
	}
}
