package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/internal/framework"
	"github.com/sozercan/aop-analyst/internal/store"
)

// maxBodyBytes bounds request bodies; submissions with attached records can
// be large but never this large.
const maxBodyBytes = 8 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// fail logs err and writes it with the status its kind maps to.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Info(op+" rejected", zap.Int("status", status), zap.Error(err))
	}
	s.writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, framework.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, framework.ErrInvalidFramework),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, store.ErrNoReviewer):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		// Upstream model failures land here with their message intact.
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. On failure it writes a 400 and returns
// false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.logger.Info("Rejected malformed request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}
