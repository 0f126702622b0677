// Package read реализует HTTP-обработчик получения отчёта о прогоне
// по его уникальному идентификатору.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gymclub-checker/internal/http/response"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
	"github.com/magabrotheeeer/gymclub-checker/internal/storage/repository"
)

// Handler обрабатывает запросы на получение отчёта по run_uid.
type Handler struct {
	log   *slog.Logger
	store Store
}

// Store читает отчёт о прогоне из хранилища.
type Store interface {
	ReadRun(ctx context.Context, runUID string) (*models.RunReport, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{
		log:   log,
		store: store,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на получение отчёта по run_uid из URL.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.run.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	runUID := chi.URLParam(r, "run_uid")
	if _, err := uuid.Parse(runUID); err != nil {
		log.Error("invalid run uid in url", slog.String("run_uid", runUID))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("run_uid must be a valid uuid"))
		return
	}

	report, err := h.store.ReadRun(r.Context(), runUID)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("run not found"))
			return
		}
		log.Error("failed to read run", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read run report"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"report": report,
	}))
}
