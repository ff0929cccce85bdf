package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/faxbot/faxbot/docs"
	"github.com/faxbot/faxbot/internal/api/handlers"
	"github.com/faxbot/faxbot/internal/api/middleware"
	"github.com/faxbot/faxbot/internal/apikeys"
	"github.com/faxbot/faxbot/internal/models"
	"github.com/faxbot/faxbot/internal/ratelimit"
)

// Limits carries the per-class rate limit policies wired at startup
// from config.RateLimitConfig.
type Limits struct {
	Send        ratelimit.Policy
	Status      ratelimit.Policy
	InboundList ratelimit.Policy
	InboundGet  ratelimit.Policy
	Admin       ratelimit.Policy
}

// SetupRoutes registers every route in the fax HTTP surface.
func SetupRoutes(app *fiber.App, deps *handlers.Deps, limiter ratelimit.Store, limits Limits) {
	auth := apikeys.RequireAuth(deps.APIKeys, deps.Audit)
	optionalAuth := apikeys.OptionalAuth(deps.APIKeys)

	app.Get("/health", handlers.Health)
	app.Get("/docs/*", swagger.HandlerDefault)

	setupFaxRoutes(app, deps, auth, limiter, limits)
	setupInboundRoutes(app, deps, auth, optionalAuth, limiter, limits)
	setupWebhookRoutes(app, deps)
	setupInternalRoutes(app, deps)
	setupAdminRoutes(app, deps, auth, limiter, limits)
}

// setupFaxRoutes configures fax submission and retrieval.
func setupFaxRoutes(app *fiber.App, deps *handlers.Deps, auth fiber.Handler, limiter ratelimit.Store, limits Limits) {
	h := handlers.NewFaxHandler(deps)

	app.Post("/fax",
		auth,
		apikeys.RequireScope(models.ScopeFaxSend),
		middleware.RateLimit(limiter, ratelimit.ClassSend, limits.Send),
		h.Submit,
	)
	app.Get("/fax/:id",
		auth,
		apikeys.RequireScope(models.ScopeFaxRead),
		middleware.RateLimit(limiter, ratelimit.ClassStatus, limits.Status),
		h.Get,
	)
	// Token-gated instead of bearer-gated; verification happens inside
	// the handler against the artifact token query parameter.
	app.Get("/fax/:id/pdf", h.GetPDF)
}

// setupInboundRoutes configures received-fax listing and retrieval.
func setupInboundRoutes(app *fiber.App, deps *handlers.Deps, auth, optionalAuth fiber.Handler, limiter ratelimit.Store, limits Limits) {
	h := handlers.NewInboundHandler(deps)

	app.Get("/inbound",
		auth,
		apikeys.RequireScope(models.ScopeInboundList),
		middleware.RateLimit(limiter, ratelimit.ClassInboundList, limits.InboundList),
		h.List,
	)
	app.Get("/inbound/:id",
		auth,
		apikeys.RequireScope(models.ScopeInboundRead),
		middleware.RateLimit(limiter, ratelimit.ClassInboundGet, limits.InboundGet),
		h.Get,
	)
	// Accepts either an artifact token or an inbound:read principal;
	// optionalAuth only populates the principal, it never rejects.
	app.Get("/inbound/:id/pdf", optionalAuth, h.GetPDF)
}

// setupWebhookRoutes configures provider callback and inbound ingress
// endpoints. These authenticate internally (HMAC/basic-auth per
// provider) rather than via the bearer API key scheme.
func setupWebhookRoutes(app *fiber.App, deps *handlers.Deps) {
	phaxio := handlers.NewPhaxioHandler(deps)
	sinch := handlers.NewSinchHandler(deps)

	app.Post("/phaxio-callback", phaxio.Callback)
	app.Post("/phaxio-inbound", phaxio.Inbound)
	app.Post("/sinch-callback", sinch.Callback)
	app.Post("/sinch-inbound", sinch.Inbound)
}

// setupInternalRoutes configures the co-located PBX hooks, gated by a
// shared secret rather than a bearer key.
func setupInternalRoutes(app *fiber.App, deps *handlers.Deps) {
	asterisk := handlers.NewInternalAsteriskHandler(deps)
	freeswitch := handlers.NewInternalFreeswitchHandler(deps)

	internal := app.Group("/_internal")
	internal.Post("/asterisk/inbound", asterisk.Inbound)
	internal.Post("/freeswitch/outbound_result", freeswitch.OutboundResult)
}

// setupAdminRoutes configures API key and mailbox administration,
// all gated behind the keys:manage scope.
func setupAdminRoutes(app *fiber.App, deps *handlers.Deps, auth fiber.Handler, limiter ratelimit.Store, limits Limits) {
	keys := handlers.NewAdminKeysHandler(deps)
	mailboxes := handlers.NewAdminMailboxesHandler(deps)

	admin := app.Group("/admin",
		auth,
		apikeys.RequireScope(models.ScopeKeysManage),
		middleware.RateLimit(limiter, ratelimit.ClassAdmin, limits.Admin),
	)

	admin.Post("/api-keys", keys.Create)
	admin.Get("/api-keys", keys.List)
	admin.Delete("/api-keys/:id", keys.Revoke)
	admin.Post("/api-keys/:id/rotate", keys.Rotate)

	admin.Get("/mailboxes", mailboxes.ListMailboxes)
	admin.Post("/mailboxes", mailboxes.CreateMailbox)
	admin.Get("/inbound-rules", mailboxes.ListInboundRules)
	admin.Post("/inbound-rules", mailboxes.CreateInboundRule)
	admin.Delete("/inbound-rules/:to_number", mailboxes.DeleteInboundRule)
}
