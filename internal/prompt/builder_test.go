package prompt

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/framework"
)

func financeRequest(t *testing.T) apimodels.AnalysisRequest {
	t.Helper()
	body := `{
	  "departmentName": "Finance",
	  "fiscalYear": "FY2026",
	  "historicalData": [{"year": 2025, "spend": 1200000, "category": "opex"}],
	  "budgetData": [{"line": "Software", "amount": "350000"}],
	  "aopFormData": {
	    "executiveSummary": "Finance will automate forecasting and shorten the monthly close.",
	    "strategicPriorities": "Forecast accuracy; close efficiency",
	    "businessMetrics": [
	      {"name": "Revenue Growth", "current": 8.5, "target": "12", "unit": "%", "description": "YoY growth"},
	      {"name": "Days to Close", "current": 9, "target": 5}
	    ],
	    "aiMetrics": [{"name": "Forecast Accuracy", "current": "82", "target": "95", "unit": "%"}],
	    "initiatives": [
	      {"name": "AI Forecasting", "description": "ML-based revenue forecasts", "budget": 250000, "timeline": "Q1-Q3", "owner": "FP&A", "expectedImpact": "Accuracy to 95%"}
	    ],
	    "faqs": [{"question": "Why now?", "answer": "Legacy tooling is end-of-life."}],
	    "narrative": {"zeta": "last", "alpha": "first"}
	  }
	}`
	var req apimodels.AnalysisRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestBuild_Deterministic(t *testing.T) {
	req := financeRequest(t)
	fw := framework.Default()

	first := Build(req, fw)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Build(financeRequest(t), framework.Default()))
	}
}

func TestBuild_RendersSubmission(t *testing.T) {
	p := Build(financeRequest(t), framework.Default())

	for _, want := range []string{
		"Department: Finance",
		"Fiscal Year: FY2026",
		"1. Revenue Growth\n   Current: 8.5 | Target: 12 | Unit: %\n   Description: YoY growth",
		"2. Days to Close\n   Current: 9 | Target: 5",
		"1. Forecast Accuracy\n   Current: 82 | Target: 95 | Unit: %",
		"1. AI Forecasting\n   Description: ML-based revenue forecasts\n   Budget: 250000 | Timeline: Q1-Q3 | Owner: FP&A\n   Expected Impact: Accuracy to 95%",
		"Executive Summary: Finance will automate forecasting and shorten the monthly close.",
		"Challenges: None provided",
		"1. Q: Why now?\n   A: Legacy tooling is end-of-life.",
		`1. {"category":"opex","spend":1200000,"year":2025}`,
		`1. {"amount":"350000","line":"Software"}`,
	} {
		assert.Contains(t, p, want)
	}

	assert.Less(t, strings.Index(p, "alpha: first"), strings.Index(p, "zeta: last"))
}

func TestBuild_FrameworkAndGuidelines(t *testing.T) {
	p := Build(financeRequest(t), framework.Default())

	assert.Contains(t, p, "- Financial Health: 40%")
	assert.Contains(t, p, "- AI Readiness: 25%")
	assert.Contains(t, p, "Focus areas to de-emphasise:\n- Talent and Capability")
	assert.Contains(t, p, "1. Ground every statement in the submitted data")
	assert.Contains(t, p, "## DEPARTMENT GUIDELINES\nEmphasise forecasting accuracy")
}

func TestBuild_DataUsageInstructions(t *testing.T) {
	p := Build(financeRequest(t), framework.Default())

	assert.Contains(t, p, `Refer to the department by its name, "Finance".`)
	assert.Contains(t, p, `Reference these business metrics by their exact names: "Revenue Growth", "Days to Close".`)
	assert.Contains(t, p, `Reference these AI performance metrics by their exact names: "Forecast Accuracy".`)
	assert.Contains(t, p, `Reference these initiatives by their exact names: "AI Forecasting".`)
	assert.Contains(t, p, "Do not use generic examples")
}

func TestBuild_EmptyRequest(t *testing.T) {
	p := Build(apimodels.AnalysisRequest{}, framework.Default())

	assert.Contains(t, p, "Department: None provided")
	assert.Contains(t, p, "### Business Metrics\nNone provided")
	assert.Contains(t, p, "### AI Performance Metrics\nNone provided")
	assert.Contains(t, p, "### Strategic Initiatives\nNone provided")
	assert.Contains(t, p, "### Frequently Asked Questions\nNone provided")
	assert.Contains(t, p, "### Historical Data\nNone provided")
	assert.Contains(t, p, "### Supporting Documents\nNone provided")
	assert.Contains(t, p, "## DEPARTMENT GUIDELINES\nNone provided")
	assert.Contains(t, p, "No business metrics were submitted")
	assert.Contains(t, p, "The department name was not provided")
}

func TestBuild_OutputStructureFollowsFramework(t *testing.T) {
	fw := framework.Default()
	fw.OutputStructure = []string{"summary", "risks", "confidenceScore", "nextSteps"}

	p := Build(financeRequest(t), fw)
	assert.Contains(t, p, "exactly these keys: summary, risks, confidenceScore, nextSteps.")
	assert.Contains(t, p, `  "risks": [{"title": "string", "description": "string"}],`)
	assert.Contains(t, p, `  "confidenceScore": 0-100,`)
	assert.Contains(t, p, `  "nextSteps": "string"`+"\n}")
	assert.NotContains(t, p, `"insights"`)
}

func TestBuild_UnnamedEntries(t *testing.T) {
	req := apimodels.AnalysisRequest{
		DepartmentName: "Ops",
		AOPFormData: apimodels.AOPFormData{
			BusinessMetrics: []apimodels.Metric{{Name: "  "}},
		},
	}
	p := Build(req, framework.Default())
	assert.Contains(t, p, "1. (unnamed)")
	assert.Contains(t, p, "No business metrics were submitted")
}

func TestAnalyze(t *testing.T) {
	req := financeRequest(t)
	p := Build(req, framework.Default())
	st := Analyze(p, req)

	assert.Equal(t, len([]rune(p)), st.Length)
	assert.Equal(t, (st.Length+3)/4, st.EstimatedTokens)
	assert.Equal(t, 2, st.BusinessMetrics)
	assert.Equal(t, 1, st.AIMetrics)
	assert.Equal(t, 1, st.Initiatives)

	var titles []string
	total := 0
	for _, s := range st.Sections {
		titles = append(titles, s.Title)
		total += s.Length
	}
	assert.Equal(t, []string{"PREAMBLE", SectionFramework, SectionGuidelines, SectionSubmission, SectionRequirements, SectionOutput}, titles)
	assert.Equal(t, st.Length, total)

	require.Len(t, st.Entities, 5)
	assert.Equal(t, EntityMention{Kind: "department", Name: "Finance", Mentions: strings.Count(strings.ToLower(p), "finance")}, st.Entities[0])
	for _, e := range st.Entities {
		assert.GreaterOrEqual(t, e.Mentions, 2, e.Name)
	}
}

func TestDiff(t *testing.T) {
	a := financeRequest(t)
	b := financeRequest(t)
	b.AOPFormData.Initiatives = append(b.AOPFormData.Initiatives, apimodels.Initiative{Name: "Close Automation"})

	fw := framework.Default()
	pa, pb := Build(a, fw), Build(b, fw)

	same := Diff(pa, pa)
	assert.True(t, same.Identical)
	assert.Empty(t, same.Chunks)

	d := Diff(pa, pb)
	assert.False(t, d.Identical)
	assert.Equal(t, utf8.RuneCountInString(pa), d.LengthA)
	assert.Equal(t, utf8.RuneCountInString(pb), d.LengthB)
	assert.Greater(t, d.Added, 0)

	var inserted strings.Builder
	for _, c := range d.Chunks {
		if c.Op == "insert" {
			inserted.WriteString(c.Text)
		}
		if c.Op == "equal" {
			assert.Empty(t, c.Text)
		}
	}
	assert.Contains(t, inserted.String(), "Close Automation")
}

func TestDiff_LengthsCountCharacters(t *testing.T) {
	d := Diff("Café\n", "Straße über\n")
	assert.Equal(t, 5, d.LengthA)
	assert.Equal(t, 12, d.LengthB)
	assert.Equal(t, 1, d.Added)
	assert.Equal(t, 1, d.Removed)
}
