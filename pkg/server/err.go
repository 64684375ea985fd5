package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/atomic77/esfilter/pkg/store"
)

// Error bodies follow the Elasticsearch layout so clients can reuse their
// error handling.
type ErrorResponse struct {
	Error  ErrorCause `json:"error"`
	Status int        `json:"status"`
}

type ErrorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// requestError carries the status and type an error should be reported
// with.
type requestError struct {
	status int
	kind   string
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(kind string, err error) error {
	return &requestError{status: http.StatusBadRequest, kind: kind, err: err}
}

func errorResponse(err error) *ErrorResponse {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return &ErrorResponse{Status: re.status, Error: ErrorCause{Type: re.kind, Reason: err.Error()}}
	case errors.Is(err, store.ErrNotFound):
		return &ErrorResponse{Status: http.StatusNotFound, Error: ErrorCause{Type: "profile_missing_exception", Reason: err.Error()}}
	}
	return &ErrorResponse{Status: http.StatusInternalServerError, Error: ErrorCause{Type: "exception", Reason: err.Error()}}
}

func (s *Server) handleErrorResponse(w http.ResponseWriter, err error) {
	resp := errorResponse(err)
	if resp.Status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, resp.Status, resp)
}
