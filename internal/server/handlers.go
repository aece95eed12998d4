package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/prompt"
	"github.com/sozercan/aop-analyst/internal/validation"
)

var errNoDepartment = errors.New("departmentName is required")

type previewResponse struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling analyze request")

	var req apimodels.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DepartmentName) == "" {
		s.writeError(w, http.StatusBadRequest, errNoDepartment.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.fail(w, "Analysis request", err)
		return
	}

	s.logger.Debug("Analysis request completed successfully", zap.String("department", req.DepartmentName))
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePreviewPrompt(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling preview prompt request")

	var req apimodels.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}

	fw, err := s.frameworks.Load(r.Context())
	if err != nil {
		s.fail(w, "Preview prompt", err)
		return
	}

	p := prompt.Build(req, fw)
	s.writeJSON(w, http.StatusOK, previewResponse{Prompt: p, Length: utf8.RuneCountInString(p)})
}

func (s *Server) handleValidateForm(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling validate form request")

	var req apimodels.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := validation.Validate(req)
	if err != nil {
		s.fail(w, "Form validation", err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Handling health check request")

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	deps := map[string]any{"framework": s.frameworks}
	if s.submissions != nil {
		deps["submissions"] = s.submissions
	}
	for name, dep := range deps {
		p, ok := dep.(pinger)
		if !ok {
			continue
		}
		if err := p.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		s.logger.Warn("Health check degraded", zap.Any("checks", resp.Checks))
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}
