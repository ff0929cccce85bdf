package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// verificationHeaders lists every header a provider.Provider.VerifyCallback
// implementation reads. Fiber's request object is a fasthttp type, not
// net/http's, so callback verification gets a minimal *http.Request
// carrying just these headers rather than a full adaptor conversion.
var verificationHeaders = []string{
	"X-Phaxio-Signature",
	"X-Sinch-Signature",
	"X-Internal-Secret",
	"Authorization",
}

func newVerificationRequest(c *fiber.Ctx) *http.Request {
	req := &http.Request{Header: make(http.Header)}
	for _, name := range verificationHeaders {
		if v := c.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}
	return req
}
