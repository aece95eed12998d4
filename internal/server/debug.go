package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/analyzer"
	"github.com/sozercan/aop-analyst/internal/prompt"
)

type promptStatsResponse struct {
	prompt.Stats
	Prompt string `json:"prompt"`
}

// promptDiffRequest holds two submissions whose prompts are compared under
// the same framework.
type promptDiffRequest struct {
	A apimodels.AnalysisRequest `json:"a"`
	B apimodels.AnalysisRequest `json:"b"`
}

type testAnalysisRequest struct {
	// Mode is "mock" (canned reply built from the request) or "real"
	Mode    string                   `json:"mode"`
	Request apimodels.AnalysisRequest `json:"request"`
}

type testAnalysisResponse struct {
	Mode   string                    `json:"mode"`
	Result *apimodels.AnalysisResult `json:"result"`
	Stats  prompt.Stats              `json:"promptStats"`
}

func (s *Server) handlePromptStats(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling prompt stats request")

	var req apimodels.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}

	fw, err := s.frameworks.Load(r.Context())
	if err != nil {
		s.fail(w, "Prompt stats", err)
		return
	}

	p := prompt.Build(req, fw)
	s.writeJSON(w, http.StatusOK, promptStatsResponse{Stats: prompt.Analyze(p, req), Prompt: p})
}

func (s *Server) handlePromptDiff(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling prompt diff request")

	var req promptDiffRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.A.DepartmentName) == "" || strings.TrimSpace(req.B.DepartmentName) == "" {
		s.writeError(w, http.StatusBadRequest, "departmentName is required for both a and b")
		return
	}

	fw, err := s.frameworks.Load(r.Context())
	if err != nil {
		s.fail(w, "Prompt diff", err)
		return
	}
	s.writeJSON(w, http.StatusOK, prompt.Diff(prompt.Build(req.A, fw), prompt.Build(req.B, fw)))
}

func (s *Server) handleTestAnalysis(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Handling test analysis request")

	var req testAnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Request.DepartmentName) == "" {
		s.writeError(w, http.StatusBadRequest, errNoDepartment.Error())
		return
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	if mode == "" {
		mode = "mock"
	}

	fw, err := s.frameworks.Load(r.Context())
	if err != nil {
		s.fail(w, "Test analysis", err)
		return
	}

	var result *apimodels.AnalysisResult
	switch mode {
	case "mock":
		result, err = s.analyzer.Run(r.Context(), req.Request, fw, analyzer.MockProvider(req.Request))
	case "real":
		result, err = s.analyzer.Analyze(r.Context(), req.Request)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown mode %q, want mock or real", req.Mode))
		return
	}
	if err != nil {
		s.fail(w, "Test analysis", err)
		return
	}

	s.writeJSON(w, http.StatusOK, testAnalysisResponse{
		Mode:   mode,
		Result: result,
		Stats:  prompt.Analyze(prompt.Build(req.Request, fw), req.Request),
	})
}
