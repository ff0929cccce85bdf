package audit

import (
	"context"
	"testing"
)

func TestRecorder_DisabledIsNoop(t *testing.T) {
	rec := NewRecorder(nil, false)

	// Must not panic or touch repo (nil) when disabled.
	rec.Record(context.Background(), "key1", "auth.allowed", "APIKey", "key1", "")
}

func TestRecorder_NilReceiverIsNoop(t *testing.T) {
	var rec *Recorder

	rec.Record(context.Background(), "key1", "auth.allowed", "APIKey", "key1", "")
}
