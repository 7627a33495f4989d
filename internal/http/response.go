package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"incomebook/internal/core"
	"incomebook/internal/export"
	"incomebook/internal/ledger"
	"incomebook/internal/log"
	"incomebook/internal/report"
)

type errorBody struct {
	Error string `json:"error"`
}

// requestError marks a malformed query or path parameter.
type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{err: err}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, report.ErrUnknownKind),
		errors.Is(err, report.ErrInvalidRange),
		errors.Is(err, report.ErrInvalidYear),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidTaxPercentage),
		errors.Is(err, core.ErrInvalidPaymentMethod),
		errors.Is(err, core.ErrEmptyClient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the mapped status. Server errors are logged and
// their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status >= 500 {
		log.LogError(r.Context(), log.FromContext(r.Context()), "Request failed", err, op,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}
