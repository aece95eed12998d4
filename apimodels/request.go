package apimodels

import (
	"bytes"
	"encoding/json"
	"strings"
)

type AnalysisRequest struct {
	// Department submitting the plan
	DepartmentName string `json:"departmentName"`

	// Fiscal year the plan covers (e.g. "FY2026")
	FiscalYear string `json:"fiscalYear"`

	// Opaque records supplied by the client
	HistoricalData []Record `json:"historicalData,omitempty"`
	BudgetData     []Record `json:"budgetData,omitempty"`

	// The AOP form itself
	AOPFormData AOPFormData `json:"aopFormData"`

	SupportingDocs []Record `json:"supportingDocs,omitempty"`
}

// Record is an opaque JSON object passed through to the prompt.
type Record map[string]any

type AOPFormData struct {
	ExecutiveSummary    string `json:"executiveSummary,omitempty"`
	StrategicPriorities string `json:"strategicPriorities,omitempty"`
	Challenges          string `json:"challenges,omitempty"`
	BudgetJustification string `json:"budgetJustification,omitempty"`

	BusinessMetrics []Metric     `json:"businessMetrics,omitempty"`
	AIMetrics       []Metric     `json:"aiMetrics,omitempty"`
	Initiatives     []Initiative `json:"initiatives,omitempty"`
	FAQs            []FAQ        `json:"faqs,omitempty"`

	// Any other free-text fields the form collected
	Narrative map[string]string `json:"narrative,omitempty"`
}

type Metric struct {
	Name        string `json:"name"`
	Current     Value  `json:"current,omitempty"`
	Target      Value  `json:"target,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}

type Initiative struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Budget         Value  `json:"budget,omitempty"`
	Timeline       string `json:"timeline,omitempty"`
	Owner          string `json:"owner,omitempty"`
	ExpectedImpact string `json:"expectedImpact,omitempty"`
	Status         string `json:"status,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// Value holds a form value that the UI may send either as a JSON string or
// a JSON number. It keeps the literal text so prompts render what was typed.
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	*v = Value(data)
	return nil
}

func (v Value) String() string {
	return strings.TrimSpace(string(v))
}
