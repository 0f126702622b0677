// Package alertsenderapp собирает воркер почтовых оповещений:
// подключение к RabbitMQ, SMTP транспорт и consumer очереди провалов.
package alertsenderapp

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/smtp"
	"github.com/magabrotheeeer/gymclub-checker/internal/rabbitmq"
	alertservice "github.com/magabrotheeeer/gymclub-checker/internal/services/alertsender"
)

// App воркер почтовых оповещений.
type App struct {
	conn         *amqp.Connection
	ch           *amqp.Channel
	alertService *alertservice.Service
	logger       *slog.Logger
}

// New собирает воркер: подключает брокер и SMTP транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnectionString, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetAlertQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	alertService := alertservice.New(cfg, logger, transport)

	return &App{
		conn:         conn,
		ch:           ch,
		alertService: alertService,
		logger:       logger,
	}, nil
}

// Run запускает consumer очереди провалов и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.FailureQueue, a.alertService.SendCheckFailure)
	if err != nil {
		a.logger.Error("failed to start failure queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("alert sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
