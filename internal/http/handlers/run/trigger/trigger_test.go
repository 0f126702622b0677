package trigger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// MockRunner реализует интерфейс trigger.Runner
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunOnce(ctx context.Context) (*models.RunReport, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.(*models.RunReport), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTriggerHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockRunner)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный запуск прогона",
			setupMock: func(m *MockRunner) {
				m.On("RunOnce", mock.Anything).Return(&models.RunReport{
					RunUID: "8e5f0a2e-0c70-4d87-a52f-111111111111",
					Target: "http://club.local",
					Passed: 24,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"passed":24`,
		},
		{
			name: "ошибка прогона",
			setupMock: func(m *MockRunner) {
				m.On("RunOnce", mock.Anything).Return(nil, errors.New("context canceled"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not run checks"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockRunner)
			tt.setupMock(runner)

			handler := New(logger, runner)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			runner.AssertExpectations(t)
		})
	}
}
