// Package notification реализует сьют проверок почтовых уведомлений:
// постановку уведомления в очередь, опрос его состояния и отказ
// для несуществующего клиента.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gymclub-checker/internal/checks"
	"github.com/magabrotheeeer/gymclub-checker/internal/gymapi"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

const suiteName = "notifications"

const notificationTemplate = "payment_reminder"

// Параметры опроса состояния уведомления.
const (
	pollAttempts = 5
	pollDelay    = 200 * time.Millisecond
)

// Suite сьют проверок почтовых уведомлений.
type Suite struct {
	log      *slog.Logger
	api      *gymapi.Client
	validate *validator.Validate
}

// New создает сьют с переданными логгером и клиентом API.
func New(log *slog.Logger, api *gymapi.Client) *Suite {
	return &Suite{
		log:      log,
		api:      api,
		validate: validator.New(),
	}
}

// Name возвращает имя сьюта.
func (s *Suite) Name() string { return suiteName }

// Run выполняет проверки уведомлений на временном клиенте.
func (s *Suite) Run(ctx context.Context) []models.CheckResult {
	const op = "checks.notification.Run"
	log := s.log.With(slog.String("op", op))

	var results []models.CheckResult

	started := time.Now()
	probe, err := s.api.CreateClient(ctx, models.DummyClient{
		FullName:       "Notification Probe",
		Email:          "probe-" + uuid.NewString() + "@checker.local",
		MembershipType: "monthly",
		StartDate:      time.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		log.Error("failed to create probe client", sl.Err(err))
		return append(results, checks.Failf(suiteName, "create probe client", started, "create failed: %v", err))
	}
	defer func() {
		if err := s.api.DeleteClient(ctx, probe.ID); err != nil {
			log.Warn("failed to delete probe client", slog.Int("id", probe.ID), sl.Err(err))
		}
	}()
	results = append(results, checks.Pass(suiteName, "create probe client", started))

	started = time.Now()
	notification, err := s.api.RequestNotification(ctx, probe.ID, models.DummyNotification{
		Template: notificationTemplate,
	})
	if err != nil {
		return append(results, checks.Failf(suiteName, "request notification", started, "request failed: %v", err))
	}
	if err := s.validate.Struct(notification); err != nil {
		return append(results, checks.Failf(suiteName, "request notification", started,
			"invalid notification payload: %v", err))
	}
	if notification.ClientID != probe.ID {
		return append(results, checks.Failf(suiteName, "request notification", started,
			"notification bound to client %d, want %d", notification.ClientID, probe.ID))
	}
	results = append(results, checks.Pass(suiteName, "request notification", started))

	results = append(results, s.checkDelivery(ctx, notification.ID))
	results = append(results, s.checkUnknownClientRejected(ctx))
	return results
}

// checkDelivery опрашивает состояние уведомления, пока оно не покинет
// очередь либо не исчерпаются попытки. Состояние "queued" после всех
// попыток не считается провалом: доставка асинхронна.
func (s *Suite) checkDelivery(ctx context.Context, id string) models.CheckResult {
	const name = "notification delivery status"
	started := time.Now()

	var last *models.Notification
	for attempt := 0; attempt < pollAttempts; attempt++ {
		notification, err := s.api.ReadNotification(ctx, id)
		if err != nil {
			return checks.Failf(suiteName, name, started, "read notification failed: %v", err)
		}
		last = notification
		if notification.Status != "queued" {
			break
		}
		select {
		case <-ctx.Done():
			return checks.Failf(suiteName, name, started, "cancelled: %v", ctx.Err())
		case <-time.After(pollDelay):
		}
	}

	switch last.Status {
	case "sent", "queued":
		return checks.Pass(suiteName, name, started)
	default:
		return checks.Failf(suiteName, name, started, "notification %s ended up in status %q", id, last.Status)
	}
}

// checkUnknownClientRejected проверяет отказ для несуществующего клиента.
func (s *Suite) checkUnknownClientRejected(ctx context.Context) models.CheckResult {
	const name = "rejects unknown client"
	started := time.Now()

	_, err := s.api.RequestNotification(ctx, 999999999, models.DummyNotification{
		Template: notificationTemplate,
	})
	if err == nil {
		return checks.Failf(suiteName, name, started, "notification for unknown client was accepted")
	}

	var apiErr *gymapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return checks.Pass(suiteName, name, started)
	}
	return checks.Failf(suiteName, name, started, "want 404 for unknown client, got: %v", err)
}
