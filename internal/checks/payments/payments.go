// Package payments реализует сьют проверок расчёта даты платежа:
// payment_due_date в созданной записи клиента должна лежать ровно
// в 30 календарных днях от даты начала членства, включая переходы
// через границы месяцев, годов и високосный февраль.
package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gymclub-checker/internal/checks"
	"github.com/magabrotheeeer/gymclub-checker/internal/gymapi"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/duedate"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

const suiteName = "payments"

// Граничные даты начала членства, на которых бекенд обязан сойтись
// с расчётом duedate.FromStart.
var boundaryStartDates = []string{
	"2025-01-15",
	"2025-01-31",
	"2025-02-01",
	"2025-02-28",
	"2025-12-31",
	"2025-06-15",
	"2025-04-01",
	"2025-09-30",
	"2024-02-29",
}

// Suite сьют проверок даты платежа.
type Suite struct {
	log *slog.Logger
	api *gymapi.Client
}

// New создает сьют с переданными логгером и клиентом API.
func New(log *slog.Logger, api *gymapi.Client) *Suite {
	return &Suite{log: log, api: api}
}

// Name возвращает имя сьюта.
func (s *Suite) Name() string { return suiteName }

// Run создает клиента на каждую граничную дату начала и сверяет
// payment_due_date с собственным расчётом.
func (s *Suite) Run(ctx context.Context) []models.CheckResult {
	results := make([]models.CheckResult, 0, len(boundaryStartDates)+1)
	for _, startDate := range boundaryStartDates {
		results = append(results, s.checkDueDate(ctx, startDate))
	}
	results = append(results, s.checkDueDate(ctx, time.Now().UTC().Format("2006-01-02")))
	return results
}

func (s *Suite) checkDueDate(ctx context.Context, startDate string) models.CheckResult {
	name := "due date for start " + startDate
	started := time.Now()

	start, err := duedate.Parse(startDate)
	if err != nil {
		return checks.Failf(suiteName, name, started, "bad start date %q: %v", startDate, err)
	}
	want, err := duedate.FromStart(start)
	if err != nil {
		return checks.Failf(suiteName, name, started, "failed to compute expected due date: %v", err)
	}

	created, err := s.api.CreateClient(ctx, models.DummyClient{
		FullName:       "Due Date Probe",
		Email:          "probe-" + uuid.NewString() + "@checker.local",
		MembershipType: "monthly",
		StartDate:      startDate,
	})
	if err != nil {
		return checks.Failf(suiteName, name, started, "create failed: %v", err)
	}
	defer func() {
		if err := s.api.DeleteClient(ctx, created.ID); err != nil {
			s.log.Warn("failed to delete probe client", slog.Int("id", created.ID), sl.Err(err))
		}
	}()

	if created.StartDate != startDate {
		return checks.Failf(suiteName, name, started,
			"created record has start date %q, want %q", created.StartDate, startDate)
	}
	if created.PaymentDueDate != want.String() {
		return checks.Failf(suiteName, name, started,
			"payment due date %q, want %q (start + %d days)",
			created.PaymentDueDate, want.String(), duedate.PaymentTermDays)
	}
	return checks.Pass(suiteName, name, started)
}
