// Package subscriptiontracker собирает HTTP API трекера подписок.
package subscriptiontracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/subscription-tracker/docs"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/ai/alternatives"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/ai/analyze"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/ai/categorize"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/analytics/calendar"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/analytics/dashboard"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/analytics/simulate"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/settings/settingsread"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/settings/settingsupdate"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/projection"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	advisorservice "github.com/magabrotheeeer/subscription-tracker/internal/services/advisor"
	analyticsservice "github.com/magabrotheeeer/subscription-tracker/internal/services/analytics"
	settingsservice "github.com/magabrotheeeer/subscription-tracker/internal/services/settings"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

// Services — сервисы, которые обслуживают маршруты API.
type Services struct {
	Subscriptions *subservice.SubscriptionService
	Settings      *settingsservice.SettingsService
	Analytics     *analyticsservice.AnalyticsService
	Advisor       *advisorservice.AdvisorService
}

// RegisterRoutes регистрирует все маршруты приложения.
// При trustProxy адрес клиента для логов и лимитера берётся из заголовков прокси.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, aiLimiter *middlewarectx.IPRateLimiter, trustProxy bool) {
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New().ServeHTTP)

		r.Get("/subscriptions", list.New(logger, svc.Subscriptions).ServeHTTP)
		r.Post("/subscriptions", create.New(logger, svc.Subscriptions).ServeHTTP)
		r.Get("/subscriptions/{id}", read.New(logger, svc.Subscriptions).ServeHTTP)
		r.Put("/subscriptions/{id}", update.New(logger, svc.Subscriptions).ServeHTTP)
		r.Delete("/subscriptions/{id}", remove.New(logger, svc.Subscriptions).ServeHTTP)
		r.Get("/subscriptions/{id}/projection", projection.New(logger, svc.Analytics).ServeHTTP)

		r.Get("/settings", settingsread.New(logger, svc.Settings).ServeHTTP)
		r.Put("/settings", settingsupdate.New(logger, svc.Settings).ServeHTTP)

		r.Get("/dashboard", dashboard.New(logger, svc.Analytics).ServeHTTP)
		r.Get("/calendar", calendar.New(logger, svc.Analytics).ServeHTTP)
		r.Post("/simulator", simulate.New(logger, svc.Analytics).ServeHTTP)

		r.Route("/ai", func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, aiLimiter))
			r.Post("/categorize", categorize.New(logger, svc.Advisor).ServeHTTP)
			r.Post("/analyze", analyze.New(logger, svc.Advisor).ServeHTTP)
			r.Post("/alternatives", alternatives.New(logger, svc.Advisor).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
