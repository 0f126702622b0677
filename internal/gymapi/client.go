// Package gymapi реализует HTTP-клиент проверяемого API клуба:
// аутентификацию, CRUD по клиентам, справочник типов абонементов
// и почтовые уведомления. Все запросы проходят через rate limiter,
// чтобы чекер не перегружал боевой бекенд.
package gymapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/gymclub-checker/internal/config"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// APIError возвращается для ответа с неожиданным HTTP-статусом.
// Проверки разбирают его через errors.As, чтобы утверждать
// конкретный код ответа.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// envelope стандартный конверт ответов API клуба.
type envelope struct {
	Status string          `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client клиент API клуба с bearer-аутентификацией.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// New создает клиент по настройкам цели из конфига.
func New(cfg config.Target, log *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		username:   cfg.APIUsername,
		password:   cfg.APIPassword,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		log:        log,
	}
}

// BaseURL возвращает адрес проверяемого API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.baseURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do выполняет запрос с учётом rate limit и разбирает конверт ответа.
// При статусе вне wantStatus возвращает *APIError.
func (c *Client) do(req *http.Request, out any, wantStatus ...int) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	expected := false
	for _, status := range wantStatus {
		if resp.StatusCode == status {
			expected = true
			break
		}
	}
	if !expected {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response body: %w", decodeErr)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) authorized(ctx context.Context, method, path string, body any) (*http.Request, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// CreateClient создает клиента клуба и возвращает созданную запись.
func (c *Client) CreateClient(ctx context.Context, entry models.DummyClient) (*models.Client, error) {
	req, err := c.authorized(ctx, http.MethodPost, "/clients", entry)
	if err != nil {
		return nil, err
	}
	var created models.Client
	if err := c.do(req, &created, http.StatusCreated); err != nil {
		return nil, err
	}
	return &created, nil
}

// ReadClient возвращает запись клиента по ID.
func (c *Client) ReadClient(ctx context.Context, id int) (*models.Client, error) {
	req, err := c.authorized(ctx, http.MethodGet, "/clients/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	var client models.Client
	if err := c.do(req, &client, http.StatusOK); err != nil {
		return nil, err
	}
	return &client, nil
}

// UpdateClient обновляет запись клиента и возвращает её новое состояние.
func (c *Client) UpdateClient(ctx context.Context, id int, entry models.DummyClient) (*models.Client, error) {
	req, err := c.authorized(ctx, http.MethodPut, "/clients/"+strconv.Itoa(id), entry)
	if err != nil {
		return nil, err
	}
	var updated models.Client
	if err := c.do(req, &updated, http.StatusOK); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteClient удаляет запись клиента.
func (c *Client) DeleteClient(ctx context.Context, id int) error {
	req, err := c.authorized(ctx, http.MethodDelete, "/clients/"+strconv.Itoa(id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil, http.StatusOK, http.StatusNoContent)
}

// ListMembershipTypes возвращает справочник типов абонементов.
func (c *Client) ListMembershipTypes(ctx context.Context) ([]models.MembershipType, error) {
	req, err := c.authorized(ctx, http.MethodGet, "/membership-types", nil)
	if err != nil {
		return nil, err
	}
	var types []models.MembershipType
	if err := c.do(req, &types, http.StatusOK); err != nil {
		return nil, err
	}
	return types, nil
}

// RequestNotification ставит почтовое уведомление клиенту в очередь.
func (c *Client) RequestNotification(ctx context.Context, clientID int, entry models.DummyNotification) (*models.Notification, error) {
	req, err := c.authorized(ctx, http.MethodPost, "/clients/"+strconv.Itoa(clientID)+"/notifications", entry)
	if err != nil {
		return nil, err
	}
	var notification models.Notification
	if err := c.do(req, &notification, http.StatusAccepted); err != nil {
		return nil, err
	}
	return &notification, nil
}

// ReadNotification возвращает состояние уведомления по его ID.
func (c *Client) ReadNotification(ctx context.Context, id string) (*models.Notification, error) {
	req, err := c.authorized(ctx, http.MethodGet, "/notifications/"+id, nil)
	if err != nil {
		return nil, err
	}
	var notification models.Notification
	if err := c.do(req, &notification, http.StatusOK); err != nil {
		return nil, err
	}
	return &notification, nil
}
