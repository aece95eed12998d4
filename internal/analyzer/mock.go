package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/llm"
)

// MockProvider returns a Canned provider whose reply is MockResponse(req).
func MockProvider(req apimodels.AnalysisRequest) *llm.Canned {
	return &llm.Canned{Content: MockResponse(req)}
}

// MockResponse renders a well-formed analysis reply that names the
// submission's department, metrics and initiatives. It exercises the
// parsing and scoring path without calling a model.
func MockResponse(req apimodels.AnalysisRequest) string {
	dept := strings.TrimSpace(req.DepartmentName)
	if dept == "" {
		dept = "The department"
	}
	year := strings.TrimSpace(req.FiscalYear)
	if year == "" {
		year = "the coming year"
	}

	var metricNames []string
	for _, m := range append(append([]apimodels.Metric{}, req.AOPFormData.BusinessMetrics...), req.AOPFormData.AIMetrics...) {
		if name := strings.TrimSpace(m.Name); name != "" {
			metricNames = append(metricNames, name)
		}
	}
	var initiativeNames []string
	for _, in := range req.AOPFormData.Initiatives {
		if name := strings.TrimSpace(in.Name); name != "" {
			initiativeNames = append(initiativeNames, name)
		}
	}

	type finding struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	insights := []finding{}
	kpis := []finding{}
	for _, name := range metricNames {
		insights = append(insights, finding{
			Title:       name + " trend",
			Description: fmt.Sprintf("%s reports %s as a tracked metric for %s.", dept, name, year),
		})
		kpis = append(kpis, finding{
			Title:       name,
			Description: fmt.Sprintf("Review %s quarterly against its target.", name),
		})
	}

	recommendations := []finding{}
	risks := []finding{}
	for _, name := range initiativeNames {
		recommendations = append(recommendations, finding{
			Title:       "Stage " + name,
			Description: fmt.Sprintf("Fund %s in phases tied to measurable milestones.", name),
		})
		risks = append(risks, finding{
			Title:       name + " delivery",
			Description: fmt.Sprintf("%s depends on capacity that is not yet secured.", name),
		})
	}

	summary := fmt.Sprintf("%s submitted a plan for %s", dept, year)
	if len(initiativeNames) > 0 {
		summary += " centred on " + strings.Join(initiativeNames, ", ")
	}
	summary += "."

	reply := map[string]any{
		"summary":         summary,
		"insights":        insights,
		"recommendations": recommendations,
		"risks":           risks,
		"opportunities": []finding{{
			Title:       "Shared tooling",
			Description: fmt.Sprintf("%s can reuse tooling built by other departments.", dept),
		}},
		"kpiSuggestions":   kpis,
		"aiReadinessScore": 60,
		"confidenceScore":  75,
	}

	// Marshalling plain maps and structs cannot fail.
	data, _ := json.MarshalIndent(reply, "", "  ")
	return string(data)
}
