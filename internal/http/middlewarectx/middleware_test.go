package middlewarectx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/gymclub-checker/internal/lib/password"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBasicAuthMiddleware(t *testing.T) {
	hash, err := password.GetHash("secret")
	require.NoError(t, err)

	handler := BasicAuthMiddleware(discardLogger(), "admin", hash)(okHandler())

	tests := []struct {
		name           string
		user           string
		pass           string
		noCredentials  bool
		expectedStatus int
		expectedBody   string
	}{
		{name: "валидные учётные данные", user: "admin", pass: "secret", expectedStatus: http.StatusOK},
		{name: "неверный пароль", user: "admin", pass: "wrong",
			expectedStatus: http.StatusUnauthorized, expectedBody: "invalid credentials"},
		// Совпавший пароль при чужом имени пользователя не должен
		// пропускать запрос и не должен ронять middleware.
		{name: "неверный пользователь", user: "intruder", pass: "secret",
			expectedStatus: http.StatusUnauthorized, expectedBody: "invalid credentials"},
		{name: "без заголовка", noCredentials: true,
			expectedStatus: http.StatusUnauthorized, expectedBody: "missing credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
			if !tt.noCredentials {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
				assert.Contains(t, rr.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(discardLogger(), rate.Limit(1), 2)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
