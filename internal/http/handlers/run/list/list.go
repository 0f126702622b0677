// Package list реализует HTTP-обработчик получения истории прогонов проверок.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gymclub-checker/internal/http/response"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

const defaultLimit = 20

// Handler обрабатывает запросы на получение истории прогонов.
type Handler struct {
	log   *slog.Logger
	store Store
}

// Store читает историю прогонов из хранилища.
type Store interface {
	ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error)
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{
		log:   log,
		store: store,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на получение истории прогонов.
// Количество записей задаётся query-параметром limit.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.run.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			log.Error("invalid limit query param", slog.String("limit", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	summaries, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error("failed to list runs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read run history"))
		return
	}

	log.Info("success to list runs", slog.Int("count", len(summaries)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"runs": summaries,
	}))
}
