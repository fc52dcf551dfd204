package httputils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SetSecurityHeaders marks a response as uncacheable and disables MIME sniffing.
func SetSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
}

// ResponseStatus writes an empty response.
func ResponseStatus(w http.ResponseWriter, statusCode int) {
	SetSecurityHeaders(w)
	w.WriteHeader(statusCode)
}

func ResponseError(w http.ResponseWriter, errorCode int, errorMessage string) {
	ResponseJSON(w, errorCode, ErrorResponse{
		Error: errorMessage,
	})
}

func ResponseJSON(w http.ResponseWriter, statusCode int, data any) {
	SetSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}
