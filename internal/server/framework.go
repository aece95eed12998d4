package server

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/internal/framework"
	"github.com/sozercan/aop-analyst/internal/metrics"
)

type frameworkResponse struct {
	Framework *framework.Framework `json:"framework"`
	Summary   string               `json:"summary"`
}

type saveFrameworkRequest struct {
	Framework *framework.Framework `json:"framework"`
}

type saveFrameworkResponse struct {
	Success   bool                 `json:"success"`
	Framework *framework.Framework `json:"framework"`
}

type chatRequest struct {
	UserMessage string `json:"userMessage"`
}

type chatResponse struct {
	Message          string               `json:"message"`
	UpdatedFramework *framework.Framework `json:"updatedFramework"`
	CurrentFramework *framework.Framework `json:"currentFramework"`
}

func (s *Server) handleGetFramework(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling get framework request")

	fw, err := s.frameworks.Load(r.Context())
	if err != nil {
		s.fail(w, "Load framework", err)
		return
	}
	s.writeJSON(w, http.StatusOK, frameworkResponse{Framework: fw, Summary: framework.Summary(fw)})
}

func (s *Server) handlePutFramework(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling save framework request")

	var req saveFrameworkRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Framework == nil {
		s.writeError(w, http.StatusBadRequest, "framework is required")
		return
	}

	saved, err := s.frameworks.Save(r.Context(), req.Framework)
	metrics.FrameworkSaves.WithLabelValues(saveResult(err)).Inc()
	if err != nil {
		s.fail(w, "Save framework", err)
		return
	}

	s.logger.Info("Framework saved", zap.Int64("version", saved.Version))
	s.writeJSON(w, http.StatusOK, saveFrameworkResponse{Success: true, Framework: saved})
}

func (s *Server) handleResetFramework(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling reset framework request")

	fw, err := s.frameworks.Reset(r.Context())
	metrics.FrameworkSaves.WithLabelValues(saveResult(err)).Inc()
	if err != nil {
		s.fail(w, "Reset framework", err)
		return
	}
	s.writeJSON(w, http.StatusOK, saveFrameworkResponse{Success: true, Framework: fw})
}

// handleFrameworkChat returns a proposal only; it is applied by a later PUT
// /framework carrying the proposal's version.
func (s *Server) handleFrameworkChat(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling framework chat request")

	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		s.writeError(w, http.StatusBadRequest, "userMessage is required")
		return
	}

	current, err := s.frameworks.Load(r.Context())
	if err != nil {
		s.fail(w, "Load framework", err)
		return
	}

	reply, err := s.editor.Propose(r.Context(), req.UserMessage, current)
	if err != nil {
		s.fail(w, "Framework chat", err)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Message:          reply.Message,
		UpdatedFramework: reply.UpdatedFramework,
		CurrentFramework: current,
	})
}

func saveResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, framework.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, framework.ErrInvalidFramework):
		return "invalid"
	default:
		return "error"
	}
}
