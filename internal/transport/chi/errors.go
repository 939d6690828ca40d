package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// missingQueryMessage is the client-facing text for domain.ErrMissingQuery.
const missingQueryMessage = "Query parameter is missing"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, clientMessage(err))
		return true
	}
}

// parameterErrorHandler answers 422 with the validator's verbatim message.
func parameterErrorHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidParameter) {
		return false
	}
	var pe *domain.ParameterError
	if errors.As(err, &pe) {
		writeError(w, http.StatusUnprocessableEntity, pe.Message)
		return true
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
	return true
}

func clientMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingQuery):
		return missingQueryMessage
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"
	default:
		return err.Error()
	}
}
