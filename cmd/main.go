package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeXpertmx/Smile360-sub004/internal/handler"
	"github.com/DeXpertmx/Smile360-sub004/internal/middleware"
	"github.com/DeXpertmx/Smile360-sub004/internal/model"
	"github.com/DeXpertmx/Smile360-sub004/internal/modules"
	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/internal/tenancy"
	"github.com/DeXpertmx/Smile360-sub004/pkg/config"
	"github.com/DeXpertmx/Smile360-sub004/pkg/database"
	"github.com/DeXpertmx/Smile360-sub004/pkg/jwtutil"
	"github.com/DeXpertmx/Smile360-sub004/pkg/logger"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const serviceName = "smile360-api"

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting service", cfg.LogConfig()...)

	base, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}

	// The cache owns the base store from here on and closes it on shutdown
	cache := tenancy.NewCache(base, tenancy.NewPolicy(model.TenantColumn, model.TenantOwned...), log)
	system := tenancy.NewSystemAccessor(base, log)

	registry := modules.DefaultRegistry()
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	e := echo.New()
	e.HideBanner = true

	gate := middleware.NewGate(tokens, middleware.GateConfig{
		LoginURL:       cfg.Gate.LoginURL,
		TenantSetupURL: cfg.Gate.TenantSetupURL,
	})
	e.Use(middleware.Chain(gate, metrics.NewHTTPMetrics(cfg.Metrics.Prefix))...)

	h := handler.New(handler.Deps{
		ServiceName:   cfg.ServiceName,
		Cache:         cache,
		System:        system,
		Registry:      registry,
		Schema:        model.Schema(),
		Tokens:        tokens,
		Guard:         middleware.NewGuard(registry, cfg.Gate.LoginURL, ""),
		WebhookSecret: cfg.Webhook.Secret,
	})
	if err := h.Routes(e, handler.DefaultResources()); err != nil {
		log.Fatal("Failed to register routes", zap.Error(err))
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	err = multierr.Combine(
		e.Shutdown(ctx),
		cache.Close(),
	)
	if err != nil {
		log.Error("Shutdown finished with errors", zap.Error(err))
	}
	_ = log.Sync()
}

// openStore connects the configured store driver. For postgres the schema
// is migrated before the store is handed out.
func openStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	schema := model.Schema()
	if cfg.Store.Driver == config.DriverMemory {
		log.Warn("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(schema), nil
	}

	db, err := database.Open(&cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateModels(db, model.All()...); err != nil {
		return nil, multierr.Append(err, database.Close(db))
	}
	log.Info("Database migrations applied")

	return store.NewGormStore(db, schema, func() error { return database.Close(db) }), nil
}
