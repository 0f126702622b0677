package gymapi

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Запас до истечения токена, после которого выполняется повторный логин.
const tokenExpirySkew = 30 * time.Second

// Срок жизни, принимаемый для токенов без читаемого exp.
const opaqueTokenTTL = 10 * time.Minute

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login аутентифицируется в API клуба и запоминает bearer-токен
// вместе со временем его истечения.
func (c *Client) Login(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login", loginRequest{
		Username: c.username,
		Password: c.password,
	})
	if err != nil {
		return err
	}

	var resp loginResponse
	if err := c.do(req, &resp, http.StatusOK); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = resp.Token
	c.tokenExp = tokenExpiry(resp.Token)
	return nil
}

// ensureToken возвращает действующий токен, при необходимости выполняя
// повторный логин. Для цели без учётных данных возвращает пустую строку.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	if c.username == "" {
		return "", nil
	}

	c.mu.Lock()
	valid := c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenExpirySkew))
	token := c.token
	c.mu.Unlock()

	if valid {
		return token, nil
	}
	if err := c.Login(ctx); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

// tokenExpiry читает exp из JWT без проверки подписи: секрет принадлежит
// бекенду, чекеру достаточно знать момент истечения.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Now().Add(opaqueTokenTTL)
	}
	return claims.ExpiresAt.Time
}
