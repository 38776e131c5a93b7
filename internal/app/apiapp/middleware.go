package apiapp

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchrank/internal/config"
	httperrors "github.com/ivankudzin/matchrank/internal/transport/http/errors"
	"github.com/ivankudzin/matchrank/internal/transport/http/identity"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// IdentityMiddleware resolves the viewer from the X-User-ID header. The
// gateway in front of the engine authenticates the user and sets the header;
// a request without it is rejected before reaching any handler.
func IdentityMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				if log != nil && raw != "" {
					log.Debug("identity middleware rejected header", zap.String("x_user_id", raw))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "unauthorized",
					Message: "missing or invalid X-User-ID header",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.With(r.Context(), userID)))
		})
	}
}

// AdminAuthMiddleware guards operator and internal routes with a static
// bearer token.
func AdminAuthMiddleware(cfg config.AdminConfig, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Token == "" {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "admin_auth_unavailable",
					Message: "admin token is not configured",
				})
				return
			}

			token, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
				if log != nil {
					log.Debug("admin auth rejected", zap.String("path", r.URL.Path))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "unauthorized",
					Message: "invalid admin token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
