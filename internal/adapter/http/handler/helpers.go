package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/growbucks/internal/adapter/http/dto"
	"github.com/iho/growbucks/internal/domain"
)

// AccountReader loads accounts for authorization checks.
type AccountReader interface {
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// respondError maps err to a status and writes it. Server-side failures are logged
// and their cause is not echoed to the client.
func respondError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(message)
		writeError(w, status, message, http.StatusText(status))
		return
	}

	writeError(w, status, message, err.Error())
}

// decodeRequest decodes a JSON body into req and validates its tags.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}

	if err := dto.Validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation failed",
			Details: dto.ValidationDetails(err),
		})
		return false
	}

	return true
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrInterestRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrRateOutOfBounds),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidProjectionDays),
		errors.Is(err, domain.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrAmountOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotPending),
		errors.Is(err, domain.ErrNonZeroBalance),
		errors.Is(err, domain.ErrAccountLimitReached),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// requireCaller returns the authenticated caller or ErrUnauthorized.
func requireCaller(ctx context.Context) (*domain.Caller, error) {
	caller, ok := domain.CallerFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return caller, nil
}

// requireParent returns the caller when it is a parent.
func requireParent(ctx context.Context) (*domain.Caller, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if caller.Role != domain.RoleParent {
		return nil, domain.ErrForbidden
	}
	return caller, nil
}

// authorizeAccount loads the account and checks the caller may view it, or act on it
// as its parent when guardianOnly is set.
func authorizeAccount(ctx context.Context, accounts AccountReader, accountID string, guardianOnly bool) (*domain.Caller, *domain.Account, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, nil, err
	}

	account, err := accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	allowed := caller.CanView(account)
	if guardianOnly {
		allowed = caller.IsGuardian(account)
	}
	if !allowed {
		return nil, nil, domain.ErrForbidden
	}

	return caller, account, nil
}
