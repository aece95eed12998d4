package analyzer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sozercan/aop-analyst/apimodels"
)

const resultSchemaJSON = `{
  "type": "object",
  "required": ["summary", "insights", "recommendations", "risks", "opportunities", "kpiSuggestions", "aiReadinessScore", "confidenceScore"],
  "properties": {
    "summary": {"type": "string"},
    "insights": {"$ref": "#/definitions/findings"},
    "recommendations": {"$ref": "#/definitions/findings"},
    "risks": {"$ref": "#/definitions/findings"},
    "opportunities": {"$ref": "#/definitions/findings"},
    "kpiSuggestions": {"$ref": "#/definitions/findings"},
    "aiReadinessScore": {"type": "number"},
    "confidenceScore": {"type": "number"}
  },
  "definitions": {
    "findings": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var resultSchema = gojsonschema.NewStringLoader(resultSchemaJSON)

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ParseResult shapes the model's reply into an AnalysisResult. It never
// fails: missing or mistyped fields fall back to empty lists, an empty
// summary and zero scores. Schema deviations are listed in
// Metadata.SchemaIssues; a reply with no usable JSON object sets
// Metadata.ParseError.
func ParseResult(content string) *apimodels.AnalysisResult {
	result := emptyResult()

	text, ok := extractJSON(content)
	if !ok {
		result.Metadata.ParseError = "no JSON object found in model output"
		return result
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		result.Metadata.ParseError = "invalid JSON in model output: " + err.Error()
		return result
	}

	if v, err := gojsonschema.Validate(resultSchema, gojsonschema.NewGoLoader(doc)); err == nil {
		for _, desc := range v.Errors() {
			result.Metadata.SchemaIssues = append(result.Metadata.SchemaIssues, desc.String())
		}
	}

	if s, ok := doc["summary"].(string); ok {
		result.Summary = s
	}
	result.Insights = findings(doc["insights"])
	result.Recommendations = findings(doc["recommendations"])
	result.Risks = findings(doc["risks"])
	result.Opportunities = findings(doc["opportunities"])
	result.KPISuggestions = findings(doc["kpiSuggestions"])
	result.AIReadinessScore = number(doc["aiReadinessScore"])
	result.ConfidenceScore = number(doc["confidenceScore"])

	return result
}

func emptyResult() *apimodels.AnalysisResult {
	return &apimodels.AnalysisResult{
		Insights:        []apimodels.Finding{},
		Recommendations: []apimodels.Finding{},
		Risks:           []apimodels.Finding{},
		Opportunities:   []apimodels.Finding{},
		KPISuggestions:  []apimodels.Finding{},
		Metadata:        &apimodels.AnalysisMetadata{},
	}
}

func findings(v any) []apimodels.Finding {
	out := []apimodels.Finding{}
	items, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		switch item.(type) {
		case string, map[string]any:
		default:
			continue
		}
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var f apimodels.Finding
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

func number(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(t), "%"), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// extractJSON returns the JSON object in the reply: the whole reply, the
// body of a fenced block, or the first balanced {...} found in prose.
func extractJSON(content string) (string, bool) {
	s := strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(s, "{") && json.Valid([]byte(s)) {
		return s, true
	}
	return firstObject(s)
}

// firstObject scans for the first balanced JSON object, skipping braces
// inside string literals.
func firstObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return s[start:], true
}
