// Package clients реализует сьют проверок CRUD по записям клиентов:
// создание, чтение, обновление, удаление и чтение удалённой записи.
package clients

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

const suiteName = "clients"

// Suite сьют проверок CRUD по клиентам.
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

// Run выполняет последовательность create → read → update → delete →
// read-after-delete. Провал шага обрывает последовательность: дальнейшие
// проверки без созданной записи не имеют смысла.
func (s *Suite) Run(ctx context.Context) []models.CheckResult {
	const op = "checks.clients.Run"
	log := s.log.With(slog.String("op", op))

	var results []models.CheckResult

	entry := models.DummyClient{
		FullName:       "Checker Probe",
		Email:          "probe-" + uuid.NewString() + "@checker.local",
		Phone:          "+10000000000",
		MembershipType: "monthly",
		StartDate:      time.Now().UTC().Format("2006-01-02"),
	}

	started := time.Now()
	created, err := s.api.CreateClient(ctx, entry)
	if err != nil {
		log.Error("failed to create client", sl.Err(err))
		return append(results, checks.Failf(suiteName, "create client", started, "create failed: %v", err))
	}
	if err := s.validate.Struct(created); err != nil {
		return append(results, checks.Failf(suiteName, "create client", started, "invalid created payload: %v", err))
	}
	if created.Email != entry.Email || created.MembershipType != entry.MembershipType {
		return append(results, checks.Failf(suiteName, "create client", started,
			"created record does not echo request: got email %q type %q", created.Email, created.MembershipType))
	}
	results = append(results, checks.Pass(suiteName, "create client", started))

	started = time.Now()
	got, err := s.api.ReadClient(ctx, created.ID)
	if err != nil {
		return append(results, checks.Failf(suiteName, "read client", started, "read failed: %v", err))
	}
	if *got != *created {
		return append(results, checks.Failf(suiteName, "read client", started,
			"read record differs from created: got %+v want %+v", got, created))
	}
	results = append(results, checks.Pass(suiteName, "read client", started))

	started = time.Now()
	entry.FullName = "Checker Probe Updated"
	entry.Phone = "+10000000001"
	updated, err := s.api.UpdateClient(ctx, created.ID, entry)
	if err != nil {
		return append(results, checks.Failf(suiteName, "update client", started, "update failed: %v", err))
	}
	if updated.FullName != entry.FullName || updated.Phone != entry.Phone {
		return append(results, checks.Failf(suiteName, "update client", started,
			"update not applied: got name %q phone %q", updated.FullName, updated.Phone))
	}
	results = append(results, checks.Pass(suiteName, "update client", started))

	started = time.Now()
	if err := s.api.DeleteClient(ctx, created.ID); err != nil {
		return append(results, checks.Failf(suiteName, "delete client", started, "delete failed: %v", err))
	}
	results = append(results, checks.Pass(suiteName, "delete client", started))

	started = time.Now()
	_, err = s.api.ReadClient(ctx, created.ID)
	var apiErr *gymapi.APIError
	switch {
	case err == nil:
		results = append(results, checks.Failf(suiteName, "read after delete", started,
			"deleted client %d is still readable", created.ID))
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
		results = append(results, checks.Pass(suiteName, "read after delete", started))
	default:
		results = append(results, checks.Failf(suiteName, "read after delete", started,
			"want 404 for deleted client, got: %v", err))
	}

	return results
}
