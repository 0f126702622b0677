package models

import "time"

// Статусы отдельной проверки.
const (
	CheckPassed = "PASS"
	CheckFailed = "FAIL"
)

// CheckResult результат одной проверки внутри сьюта.
type CheckResult struct {
	Suite   string        `json:"suite"`
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	Details string        `json:"details,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Passed сообщает, завершилась ли проверка успешно.
func (r CheckResult) Passed() bool {
	return r.Status == CheckPassed
}

// RunReport агрегированный отчёт об одном прогоне всех сьютов.
type RunReport struct {
	RunUID     string        `json:"run_uid"`
	Target     string        `json:"target"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Results    []CheckResult `json:"results"`
}

// RunSummary краткая запись прогона для истории в хранилище.
type RunSummary struct {
	ID         int       `json:"id"`
	RunUID     string    `json:"run_uid"`
	Target     string    `json:"target"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
}

// AlertMessage сообщение о провале проверки, публикуемое в RabbitMQ
// и потребляемое воркером почтовых оповещений.
type AlertMessage struct {
	RunUID  string    `json:"run_uid"`
	Target  string    `json:"target"`
	Suite   string    `json:"suite"`
	Name    string    `json:"name"`
	Details string    `json:"details"`
	At      time.Time `json:"at"`
}
