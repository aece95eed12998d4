package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/aop-analyst/apimodels"
)

func fields(r *Report) []string {
	var out []string
	for _, e := range r.Errors {
		out = append(out, e.Field)
	}
	return out
}

func completeRequest() apimodels.AnalysisRequest {
	return apimodels.AnalysisRequest{
		DepartmentName: "Finance",
		FiscalYear:     "FY2026",
		HistoricalData: []apimodels.Record{{"year": 2025}},
		BudgetData:     []apimodels.Record{{"line": "Software"}},
		AOPFormData: apimodels.AOPFormData{
			ExecutiveSummary:    "Automate forecasting and shorten the monthly close.",
			StrategicPriorities: "Accuracy",
			Challenges:          "Legacy ERP",
			BudgetJustification: "Licenses",
			BusinessMetrics:     []apimodels.Metric{{Name: "Revenue Growth"}},
			AIMetrics:           []apimodels.Metric{{Name: "Forecast Accuracy"}},
			Initiatives:         []apimodels.Initiative{{Name: "AI Forecasting"}},
			FAQs:                []apimodels.FAQ{{Question: "Why?", Answer: "Because."}},
		},
	}
}

func TestValidate_Complete(t *testing.T) {
	r, err := Validate(completeRequest())
	require.NoError(t, err)

	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
	assert.Equal(t, 100, r.Completion)
	assert.Empty(t, r.Missing)
}

func TestValidate_Empty(t *testing.T) {
	r, err := Validate(apimodels.AnalysisRequest{})
	require.NoError(t, err)

	assert.False(t, r.Valid)
	assert.Equal(t, 0, r.Completion)
	assert.Len(t, r.Missing, len(trackedFields))

	got := fields(r)
	assert.Contains(t, got, "departmentName")
	assert.Contains(t, got, "fiscalYear")
	assert.Contains(t, got, "aopFormData.executiveSummary")
	assert.Contains(t, got, "aopFormData.businessMetrics")
}

func TestValidate_Partial(t *testing.T) {
	req := completeRequest()
	req.AOPFormData.ExecutiveSummary = "Too short"
	req.AOPFormData.FAQs = nil
	req.HistoricalData = nil
	req.AOPFormData.Initiatives = []apimodels.Initiative{{Name: " "}}

	r, err := Validate(req)
	require.NoError(t, err)

	assert.False(t, r.Valid)
	// 10 of 12 tracked fields are filled.
	assert.Equal(t, 83, r.Completion)
	assert.Equal(t, []string{"aopFormData.faqs", "historicalData"}, r.Missing)

	got := fields(r)
	assert.Contains(t, got, "aopFormData.executiveSummary")
	assert.Contains(t, got, "aopFormData.initiatives.0.name")
}

func TestValidate_WhitespaceDepartment(t *testing.T) {
	req := completeRequest()
	req.DepartmentName = "   "

	r, err := Validate(req)
	require.NoError(t, err)
	assert.False(t, r.Valid)
	assert.Contains(t, fields(r), "departmentName")
	assert.Contains(t, r.Missing, "departmentName")
}
