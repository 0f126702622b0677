// Package checker реализует прогон сьютов проверок: сбор отчёта,
// запись истории в хранилище, кеширование последнего отчёта и
// публикацию оповещений о провалах.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gymclub-checker/internal/checks"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
	"github.com/magabrotheeeer/gymclub-checker/internal/metrics"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// LastReportKey ключ кеша с последним отчётом о прогоне.
const LastReportKey = "report:last"

const lastReportTTL = 24 * time.Hour

// RunStore хранилище истории прогонов.
type RunStore interface {
	SaveRun(ctx context.Context, report models.RunReport) (int, error)
}

// ReportCache кеш последнего отчёта и дедупликация оповещений.
type ReportCache interface {
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
	AcquireOnce(key string, ttl time.Duration) (bool, error)
}

// AlertPublisher публикует сообщения о провалах проверок.
type AlertPublisher interface {
	Publish(alert models.AlertMessage) error
}

// Service прогоняет сьюты и раскладывает результаты по потребителям.
// Хранилище, кеш и издатель оповещений опциональны: nil отключает
// соответствующий шаг.
type Service struct {
	log      *slog.Logger
	suites   []checks.Suite
	store    RunStore
	cache    ReportCache
	alerts   AlertPublisher
	target   string
	alertTTL time.Duration
}

// New создает сервис прогона проверок.
func New(log *slog.Logger, suites []checks.Suite, store RunStore, cache ReportCache,
	alerts AlertPublisher, target string, alertTTL time.Duration) *Service {
	return &Service{
		log:      log,
		suites:   suites,
		store:    store,
		cache:    cache,
		alerts:   alerts,
		target:   target,
		alertTTL: alertTTL,
	}
}

// RunOnce выполняет один прогон всех сьютов и возвращает отчёт.
// Ошибка возвращается только при невозможности прогона, провалы
// проверок отражаются в отчёте.
func (s *Service) RunOnce(ctx context.Context) (*models.RunReport, error) {
	const op = "services.checker.RunOnce"
	log := s.log.With(slog.String("op", op))

	report := &models.RunReport{
		RunUID:    uuid.NewString(),
		Target:    s.target,
		StartedAt: time.Now().UTC(),
	}
	log.Info("starting check run",
		slog.String("run_uid", report.RunUID),
		slog.String("target", report.Target))

	for _, suite := range s.suites {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("running suite", slog.String("suite", suite.Name()))
		results := suite.Run(ctx)
		for _, res := range results {
			if res.Passed() {
				report.Passed++
				log.Info("check passed",
					slog.String("suite", res.Suite),
					slog.String("check", res.Name),
					slog.Duration("elapsed", res.Elapsed))
			} else {
				report.Failed++
				log.Error("check failed",
					slog.String("suite", res.Suite),
					slog.String("check", res.Name),
					slog.String("details", res.Details))
			}
			metrics.ChecksTotal.WithLabelValues(res.Suite, res.Status).Inc()
		}
		report.Results = append(report.Results, results...)
	}
	report.FinishedAt = time.Now().UTC()

	metrics.RunsTotal.Inc()
	metrics.LastRunFailed.Set(float64(report.Failed))
	metrics.LastRunTimestamp.Set(float64(report.FinishedAt.Unix()))
	metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	s.persist(ctx, log, report)
	s.publishAlerts(log, report)

	log.Info("check run finished",
		slog.String("run_uid", report.RunUID),
		slog.Int("passed", report.Passed),
		slog.Int("failed", report.Failed))
	return report, nil
}

// RunLoop прогоняет проверки сразу и затем по тикеру до отмены контекста.
func (s *Service) RunLoop(ctx context.Context, interval time.Duration) error {
	const op = "services.checker.RunLoop"

	if _, err := s.RunOnce(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
}

// persist пишет отчёт в историю и кеширует его как последний.
// Ошибки записи прогон не валят: отчёт уже собран.
func (s *Service) persist(ctx context.Context, log *slog.Logger, report *models.RunReport) {
	if s.store != nil {
		if _, err := s.store.SaveRun(ctx, *report); err != nil {
			log.Error("failed to save run report", sl.Err(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Set(LastReportKey, report, lastReportTTL); err != nil {
			log.Error("failed to cache run report", sl.Err(err))
			// Не отдавать из кеша устаревший отчёт, раз свежий записать не удалось.
			if err := s.cache.Invalidate(LastReportKey); err != nil {
				log.Error("failed to invalidate cached run report", sl.Err(err))
			}
		}
	}
}

// publishAlerts публикует оповещение на каждый провал. Повторный провал
// той же проверки внутри alertTTL подавляется через кеш.
func (s *Service) publishAlerts(log *slog.Logger, report *models.RunReport) {
	if s.alerts == nil {
		return
	}
	for _, res := range report.Results {
		if res.Passed() {
			continue
		}
		if s.cache != nil {
			key := "alert:" + res.Suite + ":" + res.Name
			acquired, err := s.cache.AcquireOnce(key, s.alertTTL)
			if err != nil {
				log.Warn("alert dedup unavailable", sl.Err(err))
			} else if !acquired {
				continue
			}
		}
		alert := models.AlertMessage{
			RunUID:  report.RunUID,
			Target:  report.Target,
			Suite:   res.Suite,
			Name:    res.Name,
			Details: res.Details,
			At:      report.FinishedAt,
		}
		if err := s.alerts.Publish(alert); err != nil {
			log.Error("failed to publish alert",
				slog.String("suite", res.Suite),
				slog.String("check", res.Name),
				sl.Err(err))
		}
	}
}
