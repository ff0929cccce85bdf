package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/faxbot/faxbot/internal/ratelimit"
)

func newTestApp(policy ratelimit.Policy) *fiber.App {
	app := fiber.New()
	store := ratelimit.NewMemoryStore()
	app.Get("/limited", RateLimit(store, ratelimit.ClassSend, policy), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	app := newTestApp(ratelimit.Policy{RPM: 60, Burst: 2})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(fiber.MethodGet, "/limited", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	app := newTestApp(ratelimit.Policy{RPM: 60, Burst: 1})

	req1 := httptest.NewRequest(fiber.MethodGet, "/limited", nil)
	resp1, err := app.Test(req1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp1.StatusCode != fiber.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", resp1.StatusCode)
	}

	req2 := httptest.NewRequest(fiber.MethodGet, "/limited", nil)
	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp2.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected second request to be rate limited with 429, got %d", resp2.StatusCode)
	}
}

func TestRateLimit_ZeroRPMDisablesLimiting(t *testing.T) {
	app := newTestApp(ratelimit.Policy{RPM: 0, Burst: 0})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(fiber.MethodGet, "/limited", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected limiting disabled (200), got %d", i, resp.StatusCode)
		}
	}
}
