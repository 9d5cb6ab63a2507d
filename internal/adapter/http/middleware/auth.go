package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/domain"
	"github.com/iho/growbucks/internal/infrastructure/auth"
	"github.com/iho/growbucks/internal/infrastructure/logger"
	"github.com/iho/growbucks/internal/infrastructure/metrics"
)

// Dev-mode caller headers, honored only when token auth is disabled.
const (
	CallerIDHeader   = "X-Caller-ID"
	CallerRoleHeader = "X-Caller-Role"
	AccountIDHeader  = "X-Account-ID"
)

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and puts the resolved caller on the
// request context.
func Authenticate(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				authFailure(m, "missing_token")
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				authFailure(m, reason)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, withCaller(r, claims.Caller()))
		})
	}
}

// HeaderCaller trusts caller identity headers. It stands in for Authenticate in
// local setups where AUTH_ENABLED is off.
func HeaderCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := &domain.Caller{
			ID:        r.Header.Get(CallerIDHeader),
			Role:      domain.Role(r.Header.Get(CallerRoleHeader)),
			AccountID: r.Header.Get(AccountIDHeader),
		}

		if caller.ID == "" || !caller.Role.IsValid() || (caller.Role == domain.RoleChild && caller.AccountID == "") {
			writeError(w, http.StatusUnauthorized, "missing caller headers")
			return
		}

		next.ServeHTTP(w, withCaller(r, caller))
	})
}

// CronSecret guards internal endpoints with a shared bearer secret. An empty secret
// rejects every request.
func CronSecret(secret string, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				authFailure(m, "cron_secret")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func withCaller(r *http.Request, caller *domain.Caller) *http.Request {
	ctx := domain.WithCaller(r.Context(), caller)
	ctx = logger.WithCallerID(ctx, caller.ID)

	zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("caller_id", caller.ID).Str("role", string(caller.Role))
	})

	return r.WithContext(ctx)
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func authFailure(m *metrics.Metrics, reason string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
