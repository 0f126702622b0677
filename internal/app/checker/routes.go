// Package checkerapp собирает приложение чекера: хранилище, кеш,
// брокер оповещений, сьюты проверок и сервер отчётов.
package checkerapp

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/http/handlers/health"
	"github.com/magabrotheeeer/gymclub-checker/internal/http/handlers/run/latest"
	"github.com/magabrotheeeer/gymclub-checker/internal/http/handlers/run/list"
	runread "github.com/magabrotheeeer/gymclub-checker/internal/http/handlers/run/read"
	"github.com/magabrotheeeer/gymclub-checker/internal/http/handlers/run/trigger"
	"github.com/magabrotheeeer/gymclub-checker/internal/http/middlewarectx"
	checkerservice "github.com/magabrotheeeer/gymclub-checker/internal/services/checker"
)

// RegisterRoutes регистрирует все маршруты сервера отчётов.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	runner *checkerservice.Service, store latest.Store, reportCache latest.Cache) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(cfg.RateLimit), cfg.RateBurst))

		// Конечные точки чтения истории доступны только с хранилищем
		if store != nil {
			r.Get("/runs", list.New(logger, store).ServeHTTP)
			r.Get("/runs/latest", latest.New(logger, store, reportCache).ServeHTTP)
			r.Get("/runs/{run_uid}", runread.New(logger, store).ServeHTTP)
		}

		// Ручной запуск прогона защищён basic auth
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.BasicAuthMiddleware(logger, cfg.ReportUser, cfg.ReportPasswordHash))
			r.Post("/runs", trigger.New(logger, runner).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
