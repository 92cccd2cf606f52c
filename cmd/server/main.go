package main

import (
	"context"
	"log"

	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/facturapro/sessiond/api/handler"
	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/internal/config"
	"github.com/facturapro/sessiond/internal/credstore"
	"github.com/facturapro/sessiond/internal/infrastructure/monitor"
	redisInfra "github.com/facturapro/sessiond/internal/infrastructure/redis"
	"github.com/facturapro/sessiond/internal/middleware"
	"github.com/facturapro/sessiond/internal/resolver"
	"github.com/facturapro/sessiond/internal/router"
	"github.com/facturapro/sessiond/internal/services/lifecycle"
	"github.com/facturapro/sessiond/pkg/httpcontext"
	"github.com/facturapro/sessiond/pkg/logger"
	"github.com/facturapro/sessiond/repository"
	boltRepo "github.com/facturapro/sessiond/repository/bolt"
	redisRepo "github.com/facturapro/sessiond/repository/redis"
	sessionUC "github.com/facturapro/sessiond/usecase/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	var (
		store       repository.SessionStore
		slotPinger  monitor.SlotPinger
		redisClient *redislib.Client
	)
	switch cfg.Session.Backend {
	case config.BackendRedis:
		redisClient, err = redisInfra.NewClient(cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		store = redisRepo.NewSessionStore(redisClient, cfg.Session.Slot)
	default:
		boltStore, err := boltRepo.Open(cfg.Session.Path, "session")
		if err != nil {
			zapLogger.Fatal("failed to open session slot", zap.Error(err))
		}
		manager.Register("session_slot", func(ctx context.Context) error {
			return boltStore.Close()
		})
		store = boltStore
		slotPinger = boltStore
	}

	provider := resolver.New(resolver.Config{
		BaseURL: cfg.Provider.URL,
		AnonKey: cfg.Provider.AnonKey,
		Timeout: cfg.Provider.Timeout,
	}, zapLogger)

	creds := credstore.Fixed()
	sessions := sessionUC.New(creds, provider, store, zapLogger)

	// Resolve any cached or still-active session before serving traffic.
	bootCtx, bootCancel := context.WithTimeout(appCtx, cfg.Context.RequestTimeout)
	if err := sessions.Bootstrap(bootCtx); err != nil {
		zapLogger.Warn("bootstrap did not settle", zap.Error(err))
	}
	bootCancel()

	updates, unsubscribe := sessions.Subscribe()
	go func() {
		for snap := range updates {
			zapLogger.Info("session state changed",
				zap.String("status", string(snap.Status)),
				zap.Bool("authenticated", snap.Authenticated()))
		}
	}()
	manager.Register("session_updates", func(ctx context.Context) error {
		unsubscribe()
		return nil
	})

	mon := monitor.New(provider, slotPinger, redisClient, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(sessions, ctxAdapter, zapLogger),
		Session:  apiHandler.NewSessionHandler(sessions, ctxAdapter, zapLogger),
		Accounts: apiHandler.NewAccountsHandler(creds, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	manageUsers := middleware.RequireCapability(sessions, domain.CapManageUsers, zapLogger)
	r := router.New(handlers, manageUsers)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
