package subscriptiontracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/llm"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	advisorservice "github.com/magabrotheeeer/subscription-tracker/internal/services/advisor"
	analyticsservice "github.com/magabrotheeeer/subscription-tracker/internal/services/analytics"
	settingsservice "github.com/magabrotheeeer/subscription-tracker/internal/services/settings"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP API трекера подписок.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	aiLimiter *middlewarectx.IPRateLimiter
	idleTTL   time.Duration
}

// New подключает хранилище, применяет миграции, поднимает кэш и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.subscriptiontracker.New"

	// Деньги в ответах отдаются числами, а не строками.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, logger)
	settingsService := settingsservice.NewSettingsService(db, logger)
	svc := Services{
		Subscriptions: subscriptionService,
		Settings:      settingsService,
		Analytics:     analyticsservice.NewAnalyticsService(subscriptionService, settingsService, logger),
		Advisor:       advisorservice.NewAdvisorService(llm.New(cfg.AI, logger), logger),
	}

	aiLimiter := middlewarectx.NewIPRateLimiter(cfg.AIRateLimit, cfg.AIRateBurst)
	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, aiLimiter, cfg.TrustProxy)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		aiLimiter: aiLimiter,
		idleTTL:   cfg.AIRateIdleTTL,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	go a.aiLimiter.RunSweeper(ctx, a.idleTTL)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
