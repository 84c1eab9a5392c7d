package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"steward/internal/core"
	"steward/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps domain errors onto status codes: unknown rows
// are 404, rejected input is 400, everything else is a 500 with the
// detail kept out of the response body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrEmptyAccount,
		core.ErrEmptySubcategory,
		core.ErrSameAccountTransfer,
		core.ErrZeroDate,
		core.ErrUnrecognizedAccountType,
		core.ErrUnrecognizedDebitMethod,
		core.ErrUnrecognizedTransactionType,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
