package checker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gymclub-checker/internal/checks"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) SaveRun(ctx context.Context, report models.RunReport) (int, error) {
	args := m.Called(ctx, report)
	return args.Int(0), args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *mockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *mockCache) AcquireOnce(key string, ttl time.Duration) (bool, error) {
	args := m.Called(key, ttl)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(alert models.AlertMessage) error {
	args := m.Called(alert)
	return args.Error(0)
}

// stubSuite сьют с фиксированными результатами.
type stubSuite struct {
	name    string
	results []models.CheckResult
	runs    int
}

func (s *stubSuite) Name() string { return s.name }

func (s *stubSuite) Run(_ context.Context) []models.CheckResult {
	s.runs++
	return s.results
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func passResult(suite, name string) models.CheckResult {
	return models.CheckResult{Suite: suite, Name: name, Status: models.CheckPassed}
}

func failResult(suite, name, details string) models.CheckResult {
	return models.CheckResult{Suite: suite, Name: name, Status: models.CheckFailed, Details: details}
}

func TestRunOnce_AggregatesResults(t *testing.T) {
	suite := &stubSuite{name: "clients", results: []models.CheckResult{
		passResult("clients", "create client"),
		passResult("clients", "read client"),
		failResult("clients", "delete client", "delete failed"),
	}}

	store := new(mockStore)
	store.On("SaveRun", mock.Anything, mock.Anything).Return(1, nil)
	cache := new(mockCache)
	cache.On("Set", LastReportKey, mock.Anything, mock.Anything).Return(nil)
	cache.On("AcquireOnce", "alert:clients:delete client", 6*time.Hour).Return(true, nil)
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.MatchedBy(func(a models.AlertMessage) bool {
		return a.Suite == "clients" && a.Name == "delete client" && a.Details == "delete failed"
	})).Return(nil)

	svc := New(discardLogger(), []checks.Suite{suite}, store, cache, publisher, "http://club.local", 6*time.Hour)

	report, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunUID)
	assert.Equal(t, "http://club.local", report.Target)
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Results, 3)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	store.AssertExpectations(t)
	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRunOnce_DeduplicatesAlerts(t *testing.T) {
	suite := &stubSuite{name: "payments", results: []models.CheckResult{
		failResult("payments", "due date for start 2025-01-31", "off by one"),
	}}

	cache := new(mockCache)
	cache.On("Set", LastReportKey, mock.Anything, mock.Anything).Return(nil)
	// Оповещение об этом провале уже отправлялось внутри TTL.
	cache.On("AcquireOnce", "alert:payments:due date for start 2025-01-31", time.Hour).Return(false, nil)
	publisher := new(mockPublisher)

	svc := New(discardLogger(), []checks.Suite{suite}, nil, cache, publisher, "http://club.local", time.Hour)

	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	publisher.AssertNotCalled(t, "Publish", mock.Anything)
	cache.AssertExpectations(t)
}

func TestRunOnce_InvalidatesStaleReportOnCacheError(t *testing.T) {
	suite := &stubSuite{name: "clients", results: []models.CheckResult{
		passResult("clients", "create client"),
	}}

	cache := new(mockCache)
	// Свежий отчёт записать не удалось: устаревший ключ должен быть удалён.
	cache.On("Set", LastReportKey, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	cache.On("Invalidate", LastReportKey).Return(nil)

	svc := New(discardLogger(), []checks.Suite{suite}, nil, cache, nil, "http://club.local", time.Hour)

	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestRunOnce_LogsSuiteNames(t *testing.T) {
	suite := &stubSuite{name: "membership", results: []models.CheckResult{
		passResult("membership", "list membership types"),
	}}

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	svc := New(log, []checks.Suite{suite}, nil, nil, nil, "http://club.local", time.Hour)

	_, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "running suite")
	assert.Contains(t, buf.String(), "suite=membership")
}

func TestRunOnce_WithoutOptionalSinks(t *testing.T) {
	suite := &stubSuite{name: "membership", results: []models.CheckResult{
		passResult("membership", "list membership types"),
	}}

	svc := New(discardLogger(), []checks.Suite{suite}, nil, nil, nil, "http://club.local", time.Hour)

	report, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 0, report.Failed)
}

func TestRunOnce_CancelledContext(t *testing.T) {
	suite := &stubSuite{name: "clients"}
	svc := New(discardLogger(), []checks.Suite{suite}, nil, nil, nil, "http://club.local", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunOnce(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, suite.runs)
}

func TestRunLoop_StopsOnContextCancel(t *testing.T) {
	suite := &stubSuite{name: "clients", results: []models.CheckResult{
		passResult("clients", "create client"),
	}}
	svc := New(discardLogger(), []checks.Suite{suite}, nil, nil, nil, "http://club.local", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.RunLoop(ctx, 50*time.Millisecond)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunLoop did not stop after context cancellation")
	}
	assert.GreaterOrEqual(t, suite.runs, 2)
}
