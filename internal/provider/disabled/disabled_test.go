package disabled

import (
	"context"
	"strings"
	"testing"

	"github.com/faxbot/faxbot/internal/provider"
)

func TestProvider_SendAssignsUniqueSID(t *testing.T) {
	p := New()
	ctx := context.Background()

	r1, err := p.Send(ctx, provider.SendRequest{JobID: "job-1", ToNumber: "+15551234567"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	r2, err := p.Send(ctx, provider.SendRequest{JobID: "job-2", ToNumber: "+15557654321"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if r1.ProviderSID == r2.ProviderSID {
		t.Fatalf("expected distinct provider SIDs, got %q twice", r1.ProviderSID)
	}
	if !strings.HasPrefix(r1.ProviderSID, "disabled-") {
		t.Fatalf("expected disabled- prefix, got %q", r1.ProviderSID)
	}
}

func TestProvider_GetStatusNotSupported(t *testing.T) {
	p := New()
	_, err := p.GetStatus(context.Background(), "anything")
	if err != provider.ErrNotSupported {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}
