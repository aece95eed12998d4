package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/apimodels"
)

type statusRequest struct {
	Status apimodels.SubmissionStatus `json:"status"`
}

type feedbackRequest struct {
	Reviewer string                             `json:"reviewer"`
	Comments string                             `json:"comments"`
	Sections map[string]apimodels.SectionStatus `json:"sections"`
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling create submission request")

	var req apimodels.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DepartmentName) == "" {
		s.writeError(w, http.StatusBadRequest, errNoDepartment.Error())
		return
	}

	sub, err := s.submissions.CreateSubmission(r.Context(), req)
	if err != nil {
		s.fail(w, "Create submission", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling list submissions request")

	subs, err := s.submissions.ListSubmissions(r.Context(), r.URL.Query().Get("department"))
	if err != nil {
		s.fail(w, "List submissions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Info("Handling get submission request", zap.String("id", id))

	sub, err := s.submissions.GetSubmission(r.Context(), id)
	if err != nil {
		s.fail(w, "Get submission", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Info("Handling update status request", zap.String("id", id))

	var req statusRequest
	if !s.decode(w, r, &req) {
		return
	}

	sub, err := s.submissions.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		s.fail(w, "Update status", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

// handleAnalyzeSubmission analyzes the stored request and keeps the result
// on the submission.
func (s *Server) handleAnalyzeSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Info("Handling analyze submission request", zap.String("id", id))

	sub, err := s.submissions.GetSubmission(r.Context(), id)
	if err != nil {
		s.fail(w, "Analyze submission", err)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), sub.Request)
	if err != nil {
		s.fail(w, "Analyze submission", err)
		return
	}

	sub, err = s.submissions.SaveAnalysis(r.Context(), id, result)
	if err != nil {
		s.fail(w, "Save analysis", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Info("Handling add feedback request", zap.String("id", id))

	var req feedbackRequest
	if !s.decode(w, r, &req) {
		return
	}

	fb, err := s.submissions.AddFeedback(r.Context(), apimodels.Feedback{
		SubmissionID: id,
		Reviewer:     req.Reviewer,
		Comments:     req.Comments,
		Sections:     req.Sections,
	})
	if err != nil {
		s.fail(w, "Add feedback", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, fb)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Info("Handling list feedback request", zap.String("id", id))

	list, err := s.submissions.ListFeedback(r.Context(), id)
	if err != nil {
		s.fail(w, "List feedback", err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}
