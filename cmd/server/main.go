package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/folioworks/api/internal/app"
	"github.com/folioworks/api/internal/config"
	infrahttp "github.com/folioworks/api/internal/infra/http"
	"github.com/folioworks/api/internal/infra/http/middleware"
	"github.com/folioworks/api/internal/infra/http/routes"
	"github.com/folioworks/api/internal/infra/jobs"
	"github.com/folioworks/api/internal/infra/postgres"
	"github.com/folioworks/api/internal/infra/redis"
	"github.com/folioworks/api/internal/limiter"
	"github.com/folioworks/api/pkg/classifier"
	"github.com/folioworks/api/pkg/email"
	"github.com/folioworks/api/pkg/export"
	"github.com/folioworks/api/pkg/jwt"
	"github.com/folioworks/api/pkg/logger"
	"github.com/folioworks/api/pkg/validator"

	"github.com/folioworks/api/internal/infra/http/handler"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ==========================================================================
	// Configuration & Logger
	// ==========================================================================
	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	// ==========================================================================
	// Infrastructure
	// ==========================================================================
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer closeWithLog(db, "database", log)
	log.Info("database connected")

	// Counter store: Redis when configured, in-process otherwise.
	var counterStore limiter.CounterStore
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(&cfg.Redis, log)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			return 1
		}
		defer closeWithLog(redisClient, "redis", log)

		counterStore, err = redis.NewCounterStore(redisClient)
		if err != nil {
			log.Error("failed to create redis counter store", "error", err)
			return 1
		}
	} else {
		memStore := limiter.NewMemoryStore(cfg.RateLimit.StoreCapacity, cfg.RateLimit.CleanupInterval)
		defer memStore.Stop()
		counterStore = memStore
	}

	visitRepo := postgres.NewVisitRepository(db)
	threatRepo := postgres.NewThreatRepository(db)

	// ==========================================================================
	// Services
	// ==========================================================================
	visitService := app.NewVisitService(visitRepo, log)
	analyticsService := app.NewAnalyticsService(visitRepo, log)
	threatService := app.NewThreatService(threatRepo, visitRepo, app.ThreatConfig{
		BurstThreshold:  cfg.Security.BurstThreshold,
		BurstWindow:     cfg.Security.BurstWindow,
		BlacklistLimit:  cfg.Security.BlacklistLimit,
		BlacklistWindow: cfg.Security.BlacklistWindow,
	}, log)

	tokens := jwt.NewGenerator(jwt.Config{
		Secret:        cfg.Auth.JWTSecret,
		Issuer:        cfg.Auth.JWTIssuer,
		TokenDuration: cfg.Auth.TokenDuration,
	})
	valid := validator.New()

	var sender email.Sender
	if cfg.SMTP.Enabled {
		sender = email.NewSMTPSender(email.Config{
			Host:       cfg.SMTP.Host,
			Port:       cfg.SMTP.Port,
			User:       cfg.SMTP.User,
			Password:   cfg.SMTP.Password,
			From:       cfg.SMTP.From,
			FromName:   cfg.SMTP.FromName,
			TLS:        cfg.SMTP.TLS,
			SkipVerify: cfg.SMTP.SkipVerify,
			Timeout:    cfg.SMTP.Timeout,
		})
	} else {
		sender = email.NewNoOpSender()
		log.Warn("SMTP disabled, contact submissions will be dropped")
	}

	// ==========================================================================
	// HTTP
	// ==========================================================================
	gate := middleware.NewGate(classifier.New(), visitService, threatService, middleware.GateConfig{
		RedirectURL:  cfg.Security.RedirectURL,
		LogTimeout:   cfg.Security.LogTimeout,
		SkipPaths:    middleware.DefaultGateConfig().SkipPaths,
		SkipPrefixes: middleware.DefaultGateConfig().SkipPrefixes,
	}, log)

	rateLimitMw, rateLimitStop := middleware.RateLimitWithStop(&cfg.RateLimit, log)

	healthOpts := []handler.HealthHandlerOption{handler.WithDatabase(db)}
	if redisClient != nil {
		healthOpts = append(healthOpts, handler.WithRedis(redisClient))
	}

	router := routes.New(routes.Deps{
		Config: cfg,
		Logger: log,
		Handlers: routes.Handlers{
			Health:    handler.NewHealthHandler(healthOpts...),
			Auth:      handler.NewAuthHandler(cfg.Auth, tokens, valid, log),
			Analytics: handler.NewAnalyticsHandler(analyticsService, visitService, valid, log),
			Security:  handler.NewSecurityHandler(threatService, export.NewRenderer(), log),
			Contact:   handler.NewContactHandler(sender, cfg.SMTP, valid, log),
		},
		Limiters: routes.Limiters{
			Login:   limiter.MustNew(counterStore, cfg.RateLimit.StorePrefix+":login", cfg.RateLimit.LoginLimit, cfg.RateLimit.Window),
			Contact: limiter.MustNew(counterStore, cfg.RateLimit.StorePrefix+":contact", cfg.RateLimit.ContactLimit, cfg.RateLimit.Window),
			Ingest:  limiter.MustNew(counterStore, cfg.RateLimit.StorePrefix+":ingest", cfg.RateLimit.IngestLimit, cfg.RateLimit.Window),
			Export:  limiter.MustNew(counterStore, cfg.RateLimit.StorePrefix+":export", cfg.RateLimit.ExportLimit, cfg.RateLimit.Window),
		},
		Gate:      gate,
		JWT:       tokens,
		RateLimit: rateLimitMw,
	})

	server := infrahttp.NewServer(cfg, log, router, rateLimitStop)

	// ==========================================================================
	// Background jobs
	// ==========================================================================
	scheduler, err := jobs.NewScheduler(visitRepo, threatRepo, threatService, cfg.Retention, log)
	if err != nil {
		log.Error("failed to create job scheduler", "error", err)
		return 1
	}
	scheduler.Start()

	// ==========================================================================
	// Start & Graceful Shutdown
	// ==========================================================================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		scheduler.Stop()
		return server.Shutdown(shutdownCtx)
	})

	log.Info("application started", "http_addr", cfg.Server.Addr())

	if err := g.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return 1
	}

	log.Info("application stopped")
	return 0
}

func initLogger(cfg *config.Config) *logger.Logger {
	if cfg.IsDevelopment() {
		return logger.NewDevelopment()
	}
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}
