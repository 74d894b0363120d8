// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Submission outcomes are always written as a types.Result. Requests that
// never reach the submission handler (empty or malformed bodies) get the
// general error envelope instead.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/camp-signup/internal/types"
)

// Response is the envelope returned for request-level errors:
//
//	{ "status": "error", "error": "request body is empty" }
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps err into the standard error envelope.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// OK is the envelope for plain acknowledgements such as health checks.
func OK() Response {
	return Response{Status: StatusOK}
}

// ResultStatus maps a submission outcome onto an HTTP status code:
//
//	success           → 201 Created
//	validation_failed → 400 Bad Request
//	transmit_failed   → 502 Bad Gateway
func ResultStatus(res types.Result) int {
	switch res.Outcome {
	case types.OutcomeSuccess:
		return http.StatusCreated
	case types.OutcomeValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// WriteResult writes res with the status ResultStatus picks for it.
func WriteResult(w http.ResponseWriter, res types.Result) error {
	return WriteJSON(w, ResultStatus(res), res)
}
