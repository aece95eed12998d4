// Package validation checks AOP form submissions for required fields and
// reports how complete they are.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sozercan/aop-analyst/apimodels"
)

const formSchema = `{
  "type": "object",
  "required": ["departmentName", "fiscalYear", "aopFormData"],
  "properties": {
    "departmentName": {"type": "string", "minLength": 2, "pattern": "\\S"},
    "fiscalYear": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "aopFormData": {
      "type": "object",
      "required": ["executiveSummary", "businessMetrics"],
      "properties": {
        "executiveSummary": {"type": "string", "minLength": 20},
        "businessMetrics": {
          "type": "array",
          "minItems": 1,
          "items": {"$ref": "#/definitions/named"}
        },
        "aiMetrics": {"type": "array", "items": {"$ref": "#/definitions/named"}},
        "initiatives": {"type": "array", "items": {"$ref": "#/definitions/named"}}
      }
    }
  },
  "definitions": {
    "named": {
      "type": "object",
      "required": ["name"],
      "properties": {"name": {"type": "string", "minLength": 1, "pattern": "\\S"}}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(formSchema)

type Report struct {
	Valid bool `json:"valid"`
	// Completion is the share of tracked fields that are filled, 0-100
	Completion int          `json:"completion"`
	Errors     []FieldError `json:"errors"`
	Missing    []string     `json:"missing"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type trackedField struct {
	name   string
	filled func(apimodels.AnalysisRequest) bool
}

func text(s string) bool { return strings.TrimSpace(s) != "" }

var trackedFields = []trackedField{
	{"departmentName", func(r apimodels.AnalysisRequest) bool { return text(r.DepartmentName) }},
	{"fiscalYear", func(r apimodels.AnalysisRequest) bool { return text(r.FiscalYear) }},
	{"aopFormData.executiveSummary", func(r apimodels.AnalysisRequest) bool { return text(r.AOPFormData.ExecutiveSummary) }},
	{"aopFormData.strategicPriorities", func(r apimodels.AnalysisRequest) bool { return text(r.AOPFormData.StrategicPriorities) }},
	{"aopFormData.challenges", func(r apimodels.AnalysisRequest) bool { return text(r.AOPFormData.Challenges) }},
	{"aopFormData.budgetJustification", func(r apimodels.AnalysisRequest) bool { return text(r.AOPFormData.BudgetJustification) }},
	{"aopFormData.businessMetrics", func(r apimodels.AnalysisRequest) bool { return len(r.AOPFormData.BusinessMetrics) > 0 }},
	{"aopFormData.aiMetrics", func(r apimodels.AnalysisRequest) bool { return len(r.AOPFormData.AIMetrics) > 0 }},
	{"aopFormData.initiatives", func(r apimodels.AnalysisRequest) bool { return len(r.AOPFormData.Initiatives) > 0 }},
	{"aopFormData.faqs", func(r apimodels.AnalysisRequest) bool { return len(r.AOPFormData.FAQs) > 0 }},
	{"budgetData", func(r apimodels.AnalysisRequest) bool { return len(r.BudgetData) > 0 }},
	{"historicalData", func(r apimodels.AnalysisRequest) bool { return len(r.HistoricalData) > 0 }},
}

// Validate checks required fields against the form schema and computes the
// completion percentage over the tracked fields.
func Validate(req apimodels.AnalysisRequest) (*Report, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(req))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	report := &Report{
		Errors:  []FieldError{},
		Missing: []string{},
	}
	for _, desc := range result.Errors() {
		report.Errors = append(report.Errors, FieldError{
			Field:   fieldName(desc),
			Message: desc.Description(),
		})
	}
	report.Valid = len(report.Errors) == 0

	filled := 0
	for _, f := range trackedFields {
		if f.filled(req) {
			filled++
		} else {
			report.Missing = append(report.Missing, f.name)
		}
	}
	report.Completion = int(math.Round(float64(filled) / float64(len(trackedFields)) * 100))

	return report, nil
}

// fieldName reports the offending property. gojsonschema puts missing
// required properties on their parent, so the property is appended.
func fieldName(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			if field == "(root)" {
				return prop
			}
			return field + "." + prop
		}
	}
	return field
}
