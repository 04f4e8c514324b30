package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/oggyb/yourcode/internal/auth"
	svcErr "github.com/oggyb/yourcode/internal/errors"
	"github.com/oggyb/yourcode/internal/logger"
)

// RequestLogger attaches a request-scoped slog logger and writes one access
// line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := logger.L().With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

		l.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				WriteError(w, r, svcErr.Unauthorized("missing bearer token"))
				return
			}
			id, err := tokens.Verify(raw)
			if err != nil {
				WriteError(w, r, svcErr.Unauthorized("invalid or expired token"))
				return
			}
			ctx := auth.WithIdentity(r.Context(), id)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", id.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Caller returns the authenticated identity or an unauthorized error.
func Caller(r *http.Request) (auth.Identity, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, svcErr.Unauthorized("authentication required")
	}
	return id, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
