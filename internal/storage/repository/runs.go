package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// ErrRunNotFound возвращается, когда прогон с заданным run_uid отсутствует.
var ErrRunNotFound = errors.New("run not found")

// SaveRun сохраняет отчёт о прогоне вместе с результатами отдельных
// проверок в одной транзакции и возвращает ID записи прогона.
func (s *Storage) SaveRun(ctx context.Context, report models.RunReport) (int, error) {
	const op = "storage.SaveRun"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO check_runs (run_uid, target, started_at, finished_at, passed, failed)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var runID int
	err = tx.QueryRowContext(ctx, query,
		report.RunUID, report.Target, report.StartedAt, report.FinishedAt,
		report.Passed, report.Failed).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	resultQuery := `INSERT INTO check_results (run_id, suite, name, status, details, elapsed_ms)
					VALUES ($1, $2, $3, $4, $5, $6)`
	for _, res := range report.Results {
		_, err = tx.ExecContext(ctx, resultQuery,
			runID, res.Suite, res.Name, res.Status, res.Details, res.Elapsed.Milliseconds())
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return runID, nil
}

// ListRuns возвращает последние прогоны, от новых к старым.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	const op = "storage.ListRuns"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, run_uid, target, started_at, finished_at, passed, failed
			  FROM check_runs
			  ORDER BY started_at DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.RunSummary
	for rows.Next() {
		var summary models.RunSummary
		if err := rows.Scan(&summary.ID, &summary.RunUID, &summary.Target,
			&summary.StartedAt, &summary.FinishedAt, &summary.Passed, &summary.Failed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReadRun возвращает полный отчёт прогона по его run_uid.
func (s *Storage) ReadRun(ctx context.Context, runUID string) (*models.RunReport, error) {
	const op = "storage.ReadRun"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, run_uid, target, started_at, finished_at, passed, failed
			  FROM check_runs WHERE run_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, runUID)

	var id int
	var report models.RunReport
	if err := row.Scan(&id, &report.RunUID, &report.Target, &report.StartedAt,
		&report.FinishedAt, &report.Passed, &report.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrRunNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resultQuery := `SELECT suite, name, status, details, elapsed_ms
					FROM check_results WHERE run_id = $1 ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, resultQuery, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var res models.CheckResult
		var elapsedMs int64
		if err := rows.Scan(&res.Suite, &res.Name, &res.Status, &res.Details, &elapsedMs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		report.Results = append(report.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &report, nil
}
