package sip

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func TestBackoffDelay_CapsAtMax(t *testing.T) {
	d := backoffDelay(20)
	if d > backoffMax+backoffMax/4 {
		t.Fatalf("expected delay capped near max, got %v", d)
	}
	if d < backoffMax {
		t.Fatalf("expected delay at least the cap once exponent saturates, got %v", d)
	}
}

func TestBackoffDelay_GrowsWithAttempt(t *testing.T) {
	small := backoffDelay(0)
	if small < backoffBase {
		t.Fatalf("expected first attempt delay >= base, got %v", small)
	}
	if small > backoffBase+backoffBase/4 {
		t.Fatalf("expected first attempt delay near base, got %v", small)
	}

	later := backoffDelay(2)
	if later <= small {
		t.Fatalf("expected delay to grow with attempt, got %v then %v", small, later)
	}
}

func TestReadBlock_ParsesKeyValuePairs(t *testing.T) {
	raw := "Response: Success\r\nActionID: faxbot-123\r\n\r\n"
	reader := bufio.NewReader(strings.NewReader(raw))

	block, err := readBlock(reader)
	if err != nil {
		t.Fatalf("readBlock: %v", err)
	}
	if block["Response"] != "Success" {
		t.Fatalf("expected Response=Success, got %q", block["Response"])
	}
	if block["ActionID"] != "faxbot-123" {
		t.Fatalf("expected ActionID=faxbot-123, got %q", block["ActionID"])
	}
}

func TestClient_DispatchDeliversToSubscriber(t *testing.T) {
	c := NewClient("localhost", 5038, "user", "pass")

	ch := make(chan Event, 1)
	c.subMu.Lock()
	c.subs["faxbot-42"] = ch
	c.subMu.Unlock()

	c.dispatch(Event{Fields: map[string]string{"ActionID": "faxbot-42", "Response": "Success"}})

	select {
	case ev := <-ch:
		if ev.Get("Response") != "Success" {
			t.Fatalf("expected Response=Success, got %q", ev.Get("Response"))
		}
	case <-time.After(time.Second):
		t.Fatal("expected dispatched event to be delivered")
	}
}
