package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/fintrack/internal/adapter/http/dto"
)

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: kind, Message: message})
}
