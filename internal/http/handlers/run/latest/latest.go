// Package latest реализует HTTP-обработчик получения последнего отчёта
// о прогоне проверок.
//
// Handler сначала смотрит в кеш и только при промахе поднимает отчёт
// из истории в хранилище.
package latest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gymclub-checker/internal/http/response"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
	"github.com/magabrotheeeer/gymclub-checker/internal/services/checker"
	"github.com/magabrotheeeer/gymclub-checker/internal/storage/repository"
)

// Handler обрабатывает запросы на получение последнего отчёта.
type Handler struct {
	log   *slog.Logger
	store Store
	cache Cache
}

// Store читает историю прогонов из хранилища.
type Store interface {
	ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error)
	ReadRun(ctx context.Context, runUID string) (*models.RunReport, error)
}

// Cache читает закешированный последний отчёт. Может быть nil.
type Cache interface {
	Get(key string, result any) (bool, error)
}

// New создает новый Handler с переданными логгером, хранилищем и кешем.
func New(log *slog.Logger, store Store, cache Cache) *Handler {
	return &Handler{
		log:   log,
		store: store,
		cache: cache,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на получение последнего отчёта.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.run.latest"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.cache != nil {
		var report models.RunReport
		found, err := h.cache.Get(checker.LastReportKey, &report)
		if err != nil {
			log.Warn("cache lookup failed", sl.Err(err))
		}
		if found {
			render.JSON(w, r, response.OKWithData(map[string]any{
				"report": report,
			}))
			return
		}
	}

	summaries, err := h.store.ListRuns(r.Context(), 1)
	if err != nil {
		log.Error("failed to list runs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read run history"))
		return
	}
	if len(summaries) == 0 {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no completed runs"))
		return
	}

	report, err := h.store.ReadRun(r.Context(), summaries[0].RunUID)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no completed runs"))
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
