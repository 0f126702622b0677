// Package membership реализует сьют проверок справочника типов абонементов:
// справочник должен содержать ожидаемые типы, каждый из них — приниматься
// при создании клиента, а неизвестный тип — отклоняться.
package membership

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

const suiteName = "membership"

// Заведомо несуществующий тип абонемента для негативной проверки.
const bogusMembershipType = "platinum-imaginary"

// Suite сьют проверок типов абонементов.
type Suite struct {
	log      *slog.Logger
	api      *gymapi.Client
	expected []string
	validate *validator.Validate
}

// New создает сьют; expected — список типов из конфига, которые
// справочник обязан содержать.
func New(log *slog.Logger, api *gymapi.Client, expected []string) *Suite {
	return &Suite{
		log:      log,
		api:      api,
		expected: expected,
		validate: validator.New(),
	}
}

// Name возвращает имя сьюта.
func (s *Suite) Name() string { return suiteName }

// Run выполняет проверки справочника и валидации типа при создании клиента.
func (s *Suite) Run(ctx context.Context) []models.CheckResult {
	const op = "checks.membership.Run"
	log := s.log.With(slog.String("op", op))

	var results []models.CheckResult

	started := time.Now()
	types, err := s.api.ListMembershipTypes(ctx)
	if err != nil {
		log.Error("failed to list membership types", sl.Err(err))
		return append(results, checks.Failf(suiteName, "list membership types", started, "list failed: %v", err))
	}
	known := make(map[string]bool, len(types))
	for _, mt := range types {
		if err := s.validate.Struct(mt); err != nil {
			return append(results, checks.Failf(suiteName, "list membership types", started,
				"invalid membership type payload %+v: %v", mt, err))
		}
		known[mt.Name] = true
	}
	missing := make([]string, 0)
	for _, want := range s.expected {
		if !known[want] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		results = append(results, checks.Failf(suiteName, "list membership types", started,
			"catalog is missing expected types: %v", missing))
	} else {
		results = append(results, checks.Pass(suiteName, "list membership types", started))
	}

	for _, mt := range s.expected {
		results = append(results, s.checkTypeAccepted(ctx, mt))
	}

	results = append(results, s.checkBogusTypeRejected(ctx))
	return results
}

// checkTypeAccepted проверяет, что клиент с данным типом абонемента создаётся.
func (s *Suite) checkTypeAccepted(ctx context.Context, membershipType string) models.CheckResult {
	name := "accepts type " + membershipType
	started := time.Now()

	created, err := s.api.CreateClient(ctx, models.DummyClient{
		FullName:       "Membership Probe",
		Email:          "probe-" + uuid.NewString() + "@checker.local",
		MembershipType: membershipType,
		StartDate:      time.Now().UTC().Format("2006-01-02"),
	})
	if err != nil {
		return checks.Failf(suiteName, name, started, "create with type %q failed: %v", membershipType, err)
	}
	defer s.cleanup(ctx, created.ID)

	if created.MembershipType != membershipType {
		return checks.Failf(suiteName, name, started,
			"created record has type %q, want %q", created.MembershipType, membershipType)
	}
	return checks.Pass(suiteName, name, started)
}

// checkBogusTypeRejected проверяет, что несуществующий тип отклоняется
// клиентским статусом 400 или 422.
func (s *Suite) checkBogusTypeRejected(ctx context.Context) models.CheckResult {
	const name = "rejects unknown type"
	started := time.Now()

	created, err := s.api.CreateClient(ctx, models.DummyClient{
		FullName:       "Membership Probe",
		Email:          "probe-" + uuid.NewString() + "@checker.local",
		MembershipType: bogusMembershipType,
		StartDate:      time.Now().UTC().Format("2006-01-02"),
	})
	if err == nil {
		s.cleanup(ctx, created.ID)
		return checks.Failf(suiteName, name, started,
			"client with unknown type %q was created with id %d", bogusMembershipType, created.ID)
	}

	var apiErr *gymapi.APIError
	if errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity) {
		return checks.Pass(suiteName, name, started)
	}
	return checks.Failf(suiteName, name, started, "want 400 or 422 for unknown type, got: %v", err)
}

// cleanup удаляет запись, созданную проверкой. Ошибка удаления не валит
// проверку, но попадает в лог.
func (s *Suite) cleanup(ctx context.Context, id int) {
	if err := s.api.DeleteClient(ctx, id); err != nil {
		s.log.Warn("failed to delete probe client", slog.Int("id", id), sl.Err(err))
	}
}
