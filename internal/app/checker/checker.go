package checkerapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gymclub-checker/internal/cache"
	"github.com/magabrotheeeer/gymclub-checker/internal/checks"
	"github.com/magabrotheeeer/gymclub-checker/internal/checks/clients"
	"github.com/magabrotheeeer/gymclub-checker/internal/checks/membership"
	"github.com/magabrotheeeer/gymclub-checker/internal/checks/notification"
	"github.com/magabrotheeeer/gymclub-checker/internal/checks/payments"
	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/gymapi"
	"github.com/magabrotheeeer/gymclub-checker/internal/http/handlers/run/latest"
	"github.com/magabrotheeeer/gymclub-checker/internal/migrations"
	"github.com/magabrotheeeer/gymclub-checker/internal/rabbitmq"
	checkerservice "github.com/magabrotheeeer/gymclub-checker/internal/services/checker"
	"github.com/magabrotheeeer/gymclub-checker/internal/storage/repository"
)

// ErrChecksFailed возвращается из Run в одиночном режиме, когда хотя бы
// одна проверка провалилась. Позволяет main завершиться ненулевым кодом.
var ErrChecksFailed = errors.New("check run finished with failures")

// App приложение чекера.
type App struct {
	server   *http.Server
	runner   *checkerservice.Service
	interval time.Duration
	logger   *slog.Logger
	db       *repository.Storage
	conn     *amqp.Connection
	ch       *amqp.Channel
}

// New собирает приложение: подключает хранилище, кеш и брокер,
// строит сьюты проверок и сервер отчётов.
//
// Хранилище, кеш и брокер опциональны: пустая строка подключения
// в конфиге отключает соответствующий компонент.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		interval: cfg.Interval,
		logger:   logger,
	}

	var store checkerservice.RunStore
	var reportStore latest.Store
	if cfg.StorageConnectionString != "" {
		db, err := repository.New(cfg.StorageConnectionString)
		if err != nil {
			return nil, err
		}
		if err = migrations.Run(db.DB, "./migrations"); err != nil {
			return nil, err
		}
		app.db = db
		store = db
		reportStore = db
	}

	var reportCache *cache.Cache
	if cfg.AddressRedis != "" {
		var err error
		reportCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
	}

	var alerts checkerservice.AlertPublisher
	if cfg.RabbitMQConnectionString != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQConnectionString, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetAlertQueues())
		if err != nil {
			conn.Close()
			return nil, err
		}
		app.conn = conn
		app.ch = ch
		alerts = rabbitmq.NewAlertPublisher(ch)
	}

	api := gymapi.New(cfg.Target, logger)
	suites := []checks.Suite{
		clients.New(logger, api),
		membership.New(logger, api, cfg.MembershipTypes),
		payments.New(logger, api),
		notification.New(logger, api),
	}

	var svcCache checkerservice.ReportCache
	if reportCache != nil {
		svcCache = reportCache
	}
	app.runner = checkerservice.New(logger, suites, store, svcCache, alerts, cfg.BaseURL, cfg.AlertTTL)

	router := chi.NewRouter()
	var handlerCache latest.Cache
	if reportCache != nil {
		handlerCache = reportCache
	}
	RegisterRoutes(router, logger, cfg, app.runner, reportStore, handlerCache)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return app, nil
}

// Run запускает приложение. При нулевом интервале выполняется один
// прогон и приложение завершается; иначе поднимаются сервер отчётов
// и цикл прогонов до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if a.interval == 0 {
		report, err := a.runner.RunOnce(ctx)
		if err != nil {
			return err
		}
		if report.Failed > 0 {
			return ErrChecksFailed
		}
		return nil
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()
	go func() {
		errCh <- a.runner.RunLoop(ctx, a.interval)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", slog.Any("err", err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", slog.Any("err", err))
		}
	}
	if a.db != nil {
		a.db.DB.Close()
	}
}
