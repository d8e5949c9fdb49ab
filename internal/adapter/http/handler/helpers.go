package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError classifies err and writes the error body. Internal errors are
// logged with the request logger and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	resp := dto.ErrorResponse{
		Error:   string(kind),
		Message: err.Error(),
	}

	var ve *domain.ValidationError
	var nz *domain.NonZeroBalanceError
	switch {
	case errors.As(err, &ve):
		resp.Message = ve.Message
		if ve.Field != "" {
			resp.Details = map[string]any{"field": ve.Field}
		}
	case errors.As(err, &nz):
		resp.Details = map[string]any{"balance": nz.Balance.String()}
	case kind == domain.KindInternal:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Message = "internal server error"
	}

	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON body into v and runs its struct validation.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return domain.NewValidationError("", fmt.Sprintf("invalid request body: %v", err))
	}
	return dto.Validate(v)
}

// userID returns the authenticated caller.
func userID(r *http.Request) (string, error) {
	return domain.UserIDFromContext(r.Context())
}

// parseIntQuery parses an integer query parameter. Missing means def;
// malformed is a validation error.
func parseIntQuery(r *http.Request, key string, def int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return def, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, domain.NewValidationError(key, key+" must be an integer")
	}
	return i, nil
}
