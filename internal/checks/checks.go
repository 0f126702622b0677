// Package checks определяет интерфейс сьюта проверок и вспомогательные
// конструкторы результатов. Каждый сьют — линейная последовательность
// запросов к API клуба с проверкой статусов и тел ответов.
package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// Suite набор проверок одного аспекта API клуба.
type Suite interface {
	// Name возвращает имя сьюта для отчёта.
	Name() string
	// Run выполняет проверки и возвращает их результаты.
	Run(ctx context.Context) []models.CheckResult
}

// Pass формирует успешный результат проверки.
func Pass(suite, name string, started time.Time) models.CheckResult {
	return models.CheckResult{
		Suite:   suite,
		Name:    name,
		Status:  models.CheckPassed,
		Elapsed: time.Since(started),
	}
}

// Failf формирует провальный результат с форматированным описанием причины.
func Failf(suite, name string, started time.Time, format string, args ...any) models.CheckResult {
	return models.CheckResult{
		Suite:   suite,
		Name:    name,
		Status:  models.CheckFailed,
		Details: fmt.Sprintf(format, args...),
		Elapsed: time.Since(started),
	}
}
