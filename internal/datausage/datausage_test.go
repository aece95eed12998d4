package datausage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sozercan/aop-analyst/apimodels"
)

func financeRequest() apimodels.AnalysisRequest {
	return apimodels.AnalysisRequest{
		DepartmentName: "Finance",
		AOPFormData: apimodels.AOPFormData{
			BusinessMetrics: []apimodels.Metric{{Name: "Revenue Growth"}},
			Initiatives:     []apimodels.Initiative{{Name: "AI Forecasting"}},
		},
	}
}

func TestScore_AllReferenced(t *testing.T) {
	result := &apimodels.AnalysisResult{
		Summary: "Finance's Revenue Growth initiative and AI Forecasting project",
	}

	usage := Score(financeRequest(), result)
	assert.Equal(t, 100, usage.Score)
	assert.Equal(t, 3, usage.Total)
	assert.Equal(t, []string{"Finance", "Revenue Growth", "AI Forecasting"}, usage.Referenced)
	assert.Empty(t, usage.Missing)
}

func TestScore_NoneReferenced(t *testing.T) {
	result := &apimodels.AnalysisResult{
		Summary: "The department should invest in modern tooling.",
		Risks:   []apimodels.Finding{{Title: "Execution risk", Description: "Timelines are tight."}},
	}

	usage := Score(financeRequest(), result)
	assert.Equal(t, 0, usage.Score)
	assert.Empty(t, usage.Referenced)
	assert.Equal(t, []string{"Finance", "Revenue Growth", "AI Forecasting"}, usage.Missing)
}

func TestScore_CaseInsensitiveAcrossFields(t *testing.T) {
	result := &apimodels.AnalysisResult{
		Insights: []apimodels.Finding{{Title: "FINANCE outlook"}},
		Opportunities: []apimodels.Finding{{
			Title:    "Scale forecasting",
			Metadata: map[string]any{"relatedInitiatives": []any{"ai forecasting"}},
		}},
	}

	usage := Score(financeRequest(), result)
	assert.Equal(t, 67, usage.Score)
	assert.Equal(t, []string{"Finance", "AI Forecasting"}, usage.Referenced)
	assert.Equal(t, []string{"Revenue Growth"}, usage.Missing)
}

func TestScore_DepartmentOnly(t *testing.T) {
	req := apimodels.AnalysisRequest{DepartmentName: "Marketing"}

	withDept := Score(req, &apimodels.AnalysisResult{Summary: "Marketing plan looks solid"})
	assert.Equal(t, 1, withDept.Total)
	assert.Equal(t, 100, withDept.Score)

	without := Score(req, &apimodels.AnalysisResult{Summary: "Plan looks solid"})
	assert.Equal(t, 0, without.Score)
}

func TestScore_CountsAIMetrics(t *testing.T) {
	req := financeRequest()
	req.AOPFormData.AIMetrics = []apimodels.Metric{{Name: "Model Accuracy"}, {Name: " "}}

	usage := Score(req, &apimodels.AnalysisResult{Summary: "finance model accuracy"})
	assert.Equal(t, 4, usage.Total)
	assert.Equal(t, 50, usage.Score)
	assert.NotContains(t, usage.Missing, "aiMetric (blank)")
	assert.Len(t, usage.Missing, 2)
}

func TestScore_BlankDepartment(t *testing.T) {
	req := financeRequest()
	req.DepartmentName = ""

	usage := Score(req, &apimodels.AnalysisResult{Summary: "Revenue Growth via AI Forecasting"})
	assert.Equal(t, 67, usage.Score)
	assert.Equal(t, []string{"department (blank)"}, usage.Missing)
}

func TestScore_AlwaysInRange(t *testing.T) {
	results := []*apimodels.AnalysisResult{
		nil,
		{},
		{Summary: "finance revenue growth ai forecasting finance finance"},
	}
	for _, r := range results {
		usage := Score(financeRequest(), r)
		assert.GreaterOrEqual(t, usage.Score, 0)
		assert.LessOrEqual(t, usage.Score, 100)
	}
}

func TestHaystack(t *testing.T) {
	h := Haystack(&apimodels.AnalysisResult{
		Summary: "Sum",
		KPISuggestions: []apimodels.Finding{{
			Title:       "KPI",
			Description: "Desc",
			Metadata:    map[string]any{"b": "Second", "a": map[string]any{"x": "First"}, "n": 3.0},
		}},
	})
	assert.Equal(t, "sum\nkpi\ndesc\nfirst\nsecond\n", h)
}
