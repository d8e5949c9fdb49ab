package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
)

// TokenVerifier turns a bearer token into the user it was issued to.
type TokenVerifier interface {
	Verify(token string) (*domain.User, error)
}

// Authenticate rejects requests without a valid bearer token and stores
// the authenticated user in the request context.
func Authenticate(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, reason := bearerToken(r)
			if reason == "" {
				user, err := verifier.Verify(token)
				if err == nil {
					ctx := domain.WithUser(r.Context(), user)
					zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
						return c.Str("user_id", user.ID)
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				reason = "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
			}

			if m != nil {
				m.AuthFailures.WithLabelValues(reason).Inc()
			}
			writeJSONError(w, http.StatusUnauthorized, string(domain.KindUnauthorized), authMessage(reason))
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing_header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", "malformed_header"
	}
	return strings.TrimSpace(token), ""
}

func authMessage(reason string) string {
	switch reason {
	case "missing_header":
		return "missing authorization header"
	case "malformed_header":
		return "invalid authorization header format"
	case "expired_token":
		return "token has expired"
	default:
		return "invalid token"
	}
}
