package gymapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"status": "OK",
		"data":   data,
	}))
}

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func newTestClient(t *testing.T, baseURL string, withAuth bool) *Client {
	cfg := config.Target{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		RateLimit:      100,
		RateBurst:      100,
	}
	if withAuth {
		cfg.APIUsername = "checker"
		cfg.APIPassword = "secret"
	}
	return New(cfg, testLogger())
}

func TestClient_LoginAndBearerHeader(t *testing.T) {
	var loginCalls int
	token := signedToken(t, time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			loginCalls++
			var req loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "checker", req.Username)
			assert.Equal(t, "secret", req.Password)
			writeEnvelope(t, w, http.StatusOK, map[string]string{"token": token})
		case "/membership-types":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			writeEnvelope(t, w, http.StatusOK, []models.MembershipType{
				{Name: "monthly", DurationMonth: 1, Price: 50},
			})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, true)

	types, err := client.ListMembershipTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "monthly", types[0].Name)

	// Токен ещё действует, второй логин не нужен.
	_, err = client.ListMembershipTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loginCalls)
}

func TestClient_RelogsInWhenTokenExpires(t *testing.T) {
	var loginCalls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			loginCalls++
			// Токен с истёкшим сроком заставляет клиента логиниться заново.
			writeEnvelope(t, w, http.StatusOK, map[string]string{"token": signedToken(t, -time.Minute)})
		case "/membership-types":
			writeEnvelope(t, w, http.StatusOK, []models.MembershipType{})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, true)

	_, err := client.ListMembershipTypes(context.Background())
	require.NoError(t, err)
	_, err = client.ListMembershipTypes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, loginCalls)
}

func TestClient_ClientCRUD(t *testing.T) {
	stored := models.Client{
		ID:             7,
		FullName:       "Ivan Petrov",
		Email:          "ivan@example.com",
		MembershipType: "monthly",
		StartDate:      "2025-06-15",
		PaymentDueDate: "2025-07-15",
		IsActive:       true,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/clients":
			var req models.DummyClient
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Ivan Petrov", req.FullName)
			writeEnvelope(t, w, http.StatusCreated, stored)
		case r.Method == http.MethodGet && r.URL.Path == "/clients/7":
			writeEnvelope(t, w, http.StatusOK, stored)
		case r.Method == http.MethodPut && r.URL.Path == "/clients/7":
			updated := stored
			updated.FullName = "Ivan Sidorov"
			writeEnvelope(t, w, http.StatusOK, updated)
		case r.Method == http.MethodDelete && r.URL.Path == "/clients/7":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "Error", "error": "client not found"})
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	ctx := context.Background()

	created, err := client.CreateClient(ctx, models.DummyClient{
		FullName:       "Ivan Petrov",
		Email:          "ivan@example.com",
		MembershipType: "monthly",
		StartDate:      "2025-06-15",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)
	assert.Equal(t, "2025-07-15", created.PaymentDueDate)

	got, err := client.ReadClient(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, stored, *got)

	updated, err := client.UpdateClient(ctx, 7, models.DummyClient{FullName: "Ivan Sidorov"})
	require.NoError(t, err)
	assert.Equal(t, "Ivan Sidorov", updated.FullName)

	require.NoError(t, client.DeleteClient(ctx, 7))

	_, err = client.ReadClient(ctx, 404)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "client not found", apiErr.Message)
}

func TestClient_Notifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/clients/3/notifications":
			writeEnvelope(t, w, http.StatusAccepted, models.Notification{
				ID:       "ntf-1",
				ClientID: 3,
				Template: "payment_reminder",
				Status:   "queued",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/notifications/ntf-1":
			writeEnvelope(t, w, http.StatusOK, models.Notification{
				ID:       "ntf-1",
				ClientID: 3,
				Template: "payment_reminder",
				Status:   "sent",
			})
		default:
			t.Fatalf("unexpected path: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, false)
	ctx := context.Background()

	notification, err := client.RequestNotification(ctx, 3, models.DummyNotification{Template: "payment_reminder"})
	require.NoError(t, err)
	assert.Equal(t, "queued", notification.Status)

	notification, err = client.ReadNotification(ctx, "ntf-1")
	require.NoError(t, err)
	assert.Equal(t, "sent", notification.Status)
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 422, Message: "invalid membership type"}
	assert.Equal(t, "api error: status 422: invalid membership type", err.Error())

	err = &APIError{StatusCode: 500}
	assert.Equal(t, "api error: status 500", err.Error())
}
