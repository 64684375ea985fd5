// Random administrative and health related apis
package server

import (
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Version is reported by the status endpoint.
var Version = "dev"

func (s *Server) HeadHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(nil)
}

type VersionStatus struct {
	Number string `json:"number"`
}

type StatusResponse struct {
	Name     string         `json:"name"`
	Version  *VersionStatus `json:"version"`
	Profiles int            `json:"profiles"`
	TagLine  string         `json:"tagline"`
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.List(r.Context())
	if err != nil {
		s.handleErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &StatusResponse{
		Name:     "esfilter",
		Version:  &VersionStatus{Number: Version},
		Profiles: len(entries),
		TagLine:  "You Know, for filters",
	})
}

/* Anything we don't have a handler set up for */
func (s *Server) DefaultHandler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	s.log.Warn("unsupported url",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.ByteString("body", b),
	)
	writeJSON(w, http.StatusNotImplemented, &ErrorResponse{
		Status: http.StatusNotImplemented,
		Error:  ErrorCause{Type: "unsupported_operation_exception", Reason: r.Method + " " + r.URL.Path},
	})
}
