package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validation sentinels that map to 422
var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrMissingDate,
	core.ErrInvalidType,
	core.ErrUnknownCategory,
	core.ErrCategoryMismatch,
	core.ErrInvalidFrequency,
	core.ErrInvalidRange,
	core.ErrMissingMonth,
	core.ErrNoBudgetTotal,
}

// writeError maps domain errors onto HTTP status codes. Unrecognized
// errors become 500 without leaking internals to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	body := errorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		logger := log.FromContext(r.Context())
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			"method", r.Method,
			"url", r.URL.Path)
		body.Error = "internal error"
	}

	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateMonth):
		return http.StatusConflict
	case errors.Is(err, importer.ErrFormat):
		return http.StatusBadRequest
	}

	var rowErr importer.RowError
	if errors.As(err, &rowErr) {
		return http.StatusUnprocessableEntity
	}

	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}
