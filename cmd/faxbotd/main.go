// Command faxbotd runs the Faxbot HTTP gateway: outbound fax
// dispatch, provider webhook ingress, inbound fax ingestion, and
// retention cleanup, all behind one fiber.App.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/faxbot/faxbot/config"
	"github.com/faxbot/faxbot/internal/api/handlers"
	"github.com/faxbot/faxbot/internal/api/middleware"
	"github.com/faxbot/faxbot/internal/api/routes"
	"github.com/faxbot/faxbot/internal/apikeys"
	"github.com/faxbot/faxbot/internal/audit"
	"github.com/faxbot/faxbot/internal/database"
	"github.com/faxbot/faxbot/internal/docproc"
	"github.com/faxbot/faxbot/internal/inbound"
	"github.com/faxbot/faxbot/internal/jobs"
	"github.com/faxbot/faxbot/internal/logger"
	"github.com/faxbot/faxbot/internal/provider"
	"github.com/faxbot/faxbot/internal/provider/disabled"
	"github.com/faxbot/faxbot/internal/provider/phaxio"
	"github.com/faxbot/faxbot/internal/provider/sinch"
	"github.com/faxbot/faxbot/internal/provider/sip"
	"github.com/faxbot/faxbot/internal/ratelimit"
	"github.com/faxbot/faxbot/internal/retention"
	"github.com/faxbot/faxbot/internal/storage"
	"github.com/faxbot/faxbot/internal/webhook"
)

// FaxbotService bundles every long-lived dependency the gateway needs,
// so cmd/faxbotd's wiring lives in one place instead of threading
// constructor arguments through main.
type FaxbotService struct {
	cfg *config.Config

	jobRepo     *database.JobRepository
	inboundRepo *database.InboundRepository
	mailboxRepo *database.MailboxRepository
	dedupRepo   *database.DedupRepository
	auditRepo   *database.AuditRepository

	store      storage.Provider
	proc       *docproc.Processor
	providers  *provider.Registry
	sipProv    *sip.Provider
	phaxioProv *phaxio.Provider
	sinchProv  *sinch.Provider

	apiKeys  *apikeys.Service
	jobsSvc  *jobs.Service
	webhooks *webhook.Ingress
	inbound  *inbound.Pipeline
	sweeper  *retention.Sweeper
	limiter  ratelimit.Store
	auditor  *audit.Recorder

	app *fiber.App

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFaxbotService wires every dependency from cfg and returns a
// service ready to Start.
func NewFaxbotService(cfg *config.Config) (*FaxbotService, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &FaxbotService{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := s.initDatabase(); err != nil {
		cancel()
		return nil, err
	}
	if err := s.initStorage(ctx); err != nil {
		cancel()
		return nil, err
	}
	s.initProviders()
	s.initServices()
	s.initHTTPServer()

	return s, nil
}

func (s *FaxbotService) initDatabase() error {
	if err := database.Connect(); err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	if err := database.RunMigrations(s.ctx); err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}

	db := database.GetDB()
	s.jobRepo = database.NewJobRepository(db)
	s.inboundRepo = database.NewInboundRepository(db)
	s.mailboxRepo = database.NewMailboxRepository(db)
	s.dedupRepo = database.NewDedupRepository(db)
	s.auditRepo = database.NewAuditRepository(db)

	logger.Println("database ready")
	return nil
}

func (s *FaxbotService) initStorage(ctx context.Context) error {
	store, err := storage.New(ctx, s.cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	s.store = store
	s.proc = docproc.New("gs")

	logger.Println("storage ready")
	return nil
}

// initProviders registers every outbound backend under its name and
// marks the configured one active, regardless of which one is in use,
// so webhook routes can always reach the cloud backends by name.
func (s *FaxbotService) initProviders() {
	registry := provider.NewRegistry(s.cfg.Fax.Backend)

	s.phaxioProv = phaxio.New(phaxio.Config{
		APIKey:      s.cfg.Providers.PhaxioAPIKey,
		APISecret:   s.cfg.Providers.PhaxioAPISecret,
		CallbackURL: s.cfg.Providers.PhaxioCallbackURL,
	})
	registry.Register(provider.BackendPhaxio, s.phaxioProv)

	s.sinchProv = sinch.New(sinch.Config{
		ProjectID:  s.cfg.Providers.SinchProjectID,
		APIToken:   s.cfg.Providers.SinchAPIToken,
		BasicUser:  s.cfg.Providers.SinchCallbackUser,
		BasicPass:  s.cfg.Providers.SinchCallbackPass,
		HMACSecret: s.cfg.Providers.SinchCallbackHMAC,
	}, s.store)
	registry.Register(provider.BackendSinch, s.sinchProv)

	s.sipProv = sip.New(sip.Config{
		Host:            s.cfg.Internal.AMIHost,
		Port:            s.cfg.Internal.AMIPort,
		Username:        s.cfg.Internal.AMIUsername,
		Password:        s.cfg.Internal.AMIPassword,
		InternalSecret:  s.cfg.Internal.FreeswitchSecret,
		OriginateDialer: "SIP/trunk",
	})
	registry.Register(provider.BackendSIP, s.sipProv)

	registry.Register(provider.BackendDisabled, disabled.New())

	s.providers = registry
	logger.Println("providers ready")
}

func (s *FaxbotService) initServices() {
	s.auditor = audit.NewRecorder(s.auditRepo, s.cfg.Logger.AuditLogEnable)

	s.apiKeys = apikeys.NewFromConfig(s.cfg)
	s.jobsSvc = jobs.NewService(s.jobRepo, s.store, s.proc, s.providers, s.cfg, s.auditor)
	s.webhooks = webhook.NewIngress(s.jobRepo, s.dedupRepo, s.auditor)
	s.inbound = inbound.NewPipeline(s.inboundRepo, s.mailboxRepo, s.store, s.cfg)
	s.sweeper = retention.NewSweeper(s.inboundRepo, s.dedupRepo, s.store, s.cfg)

	if s.cfg.RateLimit.Backend == "redis" {
		s.limiter = ratelimit.NewRedisStore(s.cfg.RateLimit.RedisAddr, "", 0)
	} else {
		s.limiter = ratelimit.NewMemoryStore()
	}

	logger.Println("services ready")
}

func (s *FaxbotService) initHTTPServer() {
	app := fiber.New(fiber.Config{
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"code": "internal_error", "message": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Skip: middleware.HealthCheckSkipper}))

	deps := &handlers.Deps{
		Cfg:         s.cfg,
		Jobs:        s.jobsSvc,
		JobRepo:     s.jobRepo,
		Inbound:     s.inbound,
		InboundRepo: s.inboundRepo,
		Mailboxes:   s.mailboxRepo,
		Dedup:       s.dedupRepo,
		APIKeys:     s.apiKeys,
		Webhooks:    s.webhooks,
		Store:       s.store,
		Proc:        s.proc,
		Phaxio:      s.phaxioProv,
		Sinch:       s.sinchProv,
		SIP:         s.sipProv,
		Audit:       s.auditor,
	}

	burst := s.cfg.RateLimit.Burst
	// A class with no RPM of its own falls back to MAX_REQUESTS_PER_MINUTE.
	rpm := func(classRPM int) int {
		if classRPM > 0 {
			return classRPM
		}
		return s.cfg.RateLimit.MaxRequestsPerMinute
	}
	limits := routes.Limits{
		Send:        ratelimit.Policy{RPM: rpm(s.cfg.RateLimit.SendRPM), Burst: burst},
		Status:      ratelimit.Policy{RPM: rpm(s.cfg.RateLimit.StatusRPM), Burst: burst},
		InboundList: ratelimit.Policy{RPM: rpm(s.cfg.RateLimit.InboundListRPM), Burst: burst},
		InboundGet:  ratelimit.Policy{RPM: rpm(s.cfg.RateLimit.InboundGetRPM), Burst: burst},
		Admin:       ratelimit.Policy{RPM: rpm(s.cfg.RateLimit.AdminRPM), Burst: burst},
	}

	routes.SetupRoutes(app, deps, s.limiter, limits)

	s.app = app
	logger.Println("http server ready")
}

// Start launches background workers and the HTTP listener.
func (s *FaxbotService) Start() error {
	if err := s.sweeper.Start(s.ctx); err != nil {
		return fmt.Errorf("retention sweeper: %w", err)
	}
	logger.Println("retention sweeper started")

	if s.cfg.Fax.Backend == provider.BackendSIP {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sipProv.Run(s.ctx)
		}()
		logger.Println("SIP/AMI control connection started")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.app.Listen(addr); err != nil {
			logger.LogError(s.ctx, "http_listen", err, nil)
		}
	}()
	logger.Println("faxbot listening on " + addr)

	return nil
}

// Stop shuts down the HTTP listener and background workers, then
// waits for them to drain before returning.
func (s *FaxbotService) Stop() error {
	s.cancel()

	s.sweeper.Stop()

	if err := s.app.Shutdown(); err != nil {
		logger.LogError(context.Background(), "http_shutdown", err, nil)
	}

	s.wg.Wait()

	if err := database.Close(); err != nil {
		logger.LogError(context.Background(), "database_close", err, nil)
	}

	logger.Println("faxbot stopped")
	return nil
}

func main() {
	cfg := config.Load()
	logger.Initialize()

	service, err := NewFaxbotService(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize faxbot: %v", err)
	}

	if err := service.Start(); err != nil {
		logger.Fatalf("failed to start faxbot: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := service.Stop(); err != nil {
		logger.LogError(context.Background(), "shutdown", err, nil)
		os.Exit(1)
	}
}
