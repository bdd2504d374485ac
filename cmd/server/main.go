package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gramseva/internal/application"
	applicationservice "gramseva/internal/application/service"
	"gramseva/internal/audit"
	"gramseva/internal/catalog"
	catalogservice "gramseva/internal/catalog/service"
	"gramseva/internal/identity"
	identityservice "gramseva/internal/identity/service"
	"gramseva/internal/platform/config"
	"gramseva/internal/platform/httpserver"
	"gramseva/internal/platform/logger"
	"gramseva/internal/platform/metrics"
	"gramseva/internal/platform/postgres"
	"gramseva/internal/platform/redis"
	"gramseva/internal/token"
	transport "gramseva/internal/transport/http"
)

func main() {
	log := logger.New()
	cfg := config.FromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		profileStore    identity.ProfileStore
		credentialStore identity.CredentialStore
		sessionStore    identity.SessionStore
		catalogStore    catalog.Store
		appStore        application.Store
	)

	// The store strategy is picked once here. Demo mode swaps in seeded
	// memory stores; nothing downstream re-checks the decision.
	demoMode := cfg.DemoMode()
	if demoMode {
		log.Warn("no database configured, starting in demo mode")
		memProfiles := identity.NewInMemoryProfileStore()
		memCreds := identity.NewInMemoryCredentialStore()
		memCatalog := catalog.NewInMemoryStore()
		if err := identity.SeedDemoStores(ctx, memProfiles, memCreds); err != nil {
			log.Error("failed to seed demo accounts", "error", err)
			os.Exit(1)
		}
		if err := catalog.SeedDemoStore(ctx, memCatalog); err != nil {
			log.Error("failed to seed demo catalog", "error", err)
			os.Exit(1)
		}
		profileStore = memProfiles
		credentialStore = memCreds
		catalogStore = memCatalog
		appStore = application.NewInMemoryStore()
	} else {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		profileStore = identity.NewPostgresProfileStore(db)
		credentialStore = identity.NewPostgresCredentialStore(db)
		catalogStore = catalog.NewPostgresStore(db)
		appStore = application.NewPostgresStore(db)
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessionStore = identity.NewRedisSessionStore(redisClient.Client)
		log.Info("session store", "backend", "redis")
	} else {
		sessionStore = identity.NewInMemorySessionStore()
		log.Info("session store", "backend", "memory")
	}

	var auditSink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditSink = kafkaSink
		log.Info("audit sink", "backend", "kafka", "topic", cfg.AuditTopic)
	} else {
		auditSink = audit.NewInMemoryStore()
		log.Info("audit sink", "backend", "memory")
	}
	auditPub := audit.NewPublisher(auditSink,
		audit.WithLogger(log),
		audit.WithAsyncBuffer(256),
	)
	defer auditPub.Close()

	m := metrics.New()
	bus := identity.NewBus()
	tokens := token.NewService(cfg.JWTSigningKey, "gramseva", "gramseva-portal")

	idSvc := identityservice.New(profileStore, credentialStore, sessionStore, tokens, bus,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
		identityservice.WithAuditPublisher(auditPub),
		identityservice.WithDemoMode(demoMode),
		identityservice.WithSessionTTL(cfg.SessionTTL),
	)
	catSvc := catalogservice.New(catalogStore, bus,
		catalogservice.WithLogger(log),
		catalogservice.WithMetrics(m),
		catalogservice.WithAuditPublisher(auditPub),
	)
	appSvc := applicationservice.New(appStore, catalogStore, bus,
		applicationservice.WithLogger(log),
		applicationservice.WithMetrics(m),
		applicationservice.WithAuditPublisher(auditPub),
	)

	router := transport.NewRouter(transport.RouterDeps{
		Auth:         transport.NewAuthHandler(idSvc, log),
		Profile:      transport.NewProfileHandler(idSvc, log),
		Services:     transport.NewServicesHandler(catSvc, idSvc, log),
		Applications: transport.NewApplicationsHandler(appSvc, idSvc, log),
		Validator:    transport.NewSessionValidator(tokens, sessionStore),
		Logger:       log,
	})

	server := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("server listening", "addr", cfg.Addr, "demo_mode", demoMode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}
