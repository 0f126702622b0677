package list

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

// MockStore реализует интерфейс list.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	args := m.Called(ctx, limit)
	if res := args.Get(0); res != nil {
		return res.([]*models.RunSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockStore)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение истории",
			url:  "/api/v1/runs",
			setupMock: func(m *MockStore) {
				m.On("ListRuns", mock.Anything, 20).Return([]*models.RunSummary{
					{ID: 2, RunUID: "8e5f0a2e-0c70-4d87-a52f-111111111111", Passed: 23, Failed: 1},
					{ID: 1, RunUID: "8e5f0a2e-0c70-4d87-a52f-222222222222", Passed: 24, Failed: 0},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"run_uid":"8e5f0a2e-0c70-4d87-a52f-111111111111"`,
		},
		{
			name: "лимит из query",
			url:  "/api/v1/runs?limit=1",
			setupMock: func(m *MockStore) {
				m.On("ListRuns", mock.Anything, 1).Return([]*models.RunSummary{
					{ID: 2, RunUID: "8e5f0a2e-0c70-4d87-a52f-111111111111"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "некорректный лимит",
			url:            "/api/v1/runs?limit=zero",
			setupMock:      func(_ *MockStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"limit must be a positive integer"}`,
		},
		{
			name: "ошибка хранилища",
			url:  "/api/v1/runs",
			setupMock: func(m *MockStore) {
				m.On("ListRuns", mock.Anything, 20).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not read run history"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			tt.setupMock(store)

			handler := New(logger, store)
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.expectedBody)
			store.AssertExpectations(t)
		})
	}
}
