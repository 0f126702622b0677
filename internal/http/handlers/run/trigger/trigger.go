// Package trigger реализует HTTP-обработчик ручного запуска прогона
// проверок. Конечная точка защищена basic auth.
package trigger

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gymclub-checker/internal/http/response"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// Handler обрабатывает запросы на ручной запуск прогона.
type Handler struct {
	log    *slog.Logger
	runner Runner
}

// Runner запускает один прогон всех сьютов проверок.
type Runner interface {
	RunOnce(ctx context.Context) (*models.RunReport, error)
}

// New создает новый Handler с переданными логгером и раннером.
func New(log *slog.Logger, runner Runner) *Handler {
	return &Handler{
		log:    log,
		runner: runner,
	}
}

// ServeHTTP запускает прогон проверок и возвращает собранный отчёт.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.run.trigger"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	report, err := h.runner.RunOnce(r.Context())
	if err != nil {
		log.Error("failed to run checks", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not run checks"))
		return
	}

	log.Info("manual check run finished",
		slog.String("run_uid", report.RunUID),
		slog.Int("passed", report.Passed),
		slog.Int("failed", report.Failed))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"report": report,
	}))
}
