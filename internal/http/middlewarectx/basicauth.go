// Package middlewarectx содержит HTTP middleware сервера отчётов:
// basic auth для ручного запуска проверок и ограничение частоты запросов.
package middlewarectx

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gymclub-checker/internal/http/response"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/password"
	"github.com/magabrotheeeer/gymclub-checker/internal/lib/sl"
)

// BasicAuthMiddleware возвращает middleware, проверяющий basic auth
// против настроенного пользователя и bcrypt-хеша пароля.
//
// При неуспехе возвращает HTTP 401 Unauthorized.
func BasicAuthMiddleware(log *slog.Logger, user, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.BasicAuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			gotUser, gotPass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="gymclub-checker"`)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing credentials"))
				return
			}

			userMatch := subtle.ConstantTimeCompare([]byte(gotUser), []byte(user)) == 1
			passErr := password.CompareHash(passwordHash, gotPass)
			if passErr != nil || !userMatch {
				if passErr != nil {
					log.Error("invalid credentials", slog.String("user", gotUser), sl.Err(passErr))
				} else {
					log.Error("invalid credentials", slog.String("user", gotUser), slog.String("reason", "user mismatch"))
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="gymclub-checker"`)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid credentials"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
