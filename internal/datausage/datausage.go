// Package datausage estimates whether a model response used the submitted
// data, by looking for submitted names in the response text.
//
// The check is lexical. A paraphrased name counts as missing and a short,
// common name may match by accident; the score is meant for a reviewer to
// read, not for automatic decisions.
//
// Metrics and initiatives with blank names are left out of both the search
// and the denominator.
package datausage

import (
	"math"
	"sort"
	"strings"

	"github.com/sozercan/aop-analyst/apimodels"
)

// Score searches the result text for the department name and every
// submitted metric and initiative name, case-insensitively.
//
// score = round(referenced / (metrics + initiatives + 1) * 100)
//
// The +1 is the department. Metrics and initiatives with blank names are
// not counted.
func Score(req apimodels.AnalysisRequest, result *apimodels.AnalysisResult) apimodels.DataUsage {
	haystack := Haystack(result)

	type needle struct{ label, name string }
	needles := []needle{{label: "department", name: strings.TrimSpace(req.DepartmentName)}}

	form := req.AOPFormData
	for _, m := range form.BusinessMetrics {
		if n := strings.TrimSpace(m.Name); n != "" {
			needles = append(needles, needle{label: "businessMetric", name: n})
		}
	}
	for _, m := range form.AIMetrics {
		if n := strings.TrimSpace(m.Name); n != "" {
			needles = append(needles, needle{label: "aiMetric", name: n})
		}
	}
	for _, in := range form.Initiatives {
		if n := strings.TrimSpace(in.Name); n != "" {
			needles = append(needles, needle{label: "initiative", name: n})
		}
	}

	usage := apimodels.DataUsage{
		Total:      len(needles),
		Referenced: []string{},
		Missing:    []string{},
	}
	for _, n := range needles {
		if n.name != "" && strings.Contains(haystack, strings.ToLower(n.name)) {
			usage.Referenced = append(usage.Referenced, n.name)
		} else {
			usage.Missing = append(usage.Missing, describe(n.label, n.name))
		}
	}

	usage.Score = int(math.Round(float64(len(usage.Referenced)) / float64(usage.Total) * 100))
	return usage
}

func describe(label, name string) string {
	if name == "" {
		return label + " (blank)"
	}
	return name
}

// Haystack lower-cases and joins every piece of text in the result: the
// summary, finding titles and descriptions, and string metadata values.
func Haystack(result *apimodels.AnalysisResult) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	add := func(s string) {
		if s == "" {
			return
		}
		sb.WriteString(strings.ToLower(s))
		sb.WriteByte('\n')
	}

	add(result.Summary)
	for _, list := range [][]apimodels.Finding{
		result.Insights,
		result.Recommendations,
		result.Risks,
		result.Opportunities,
		result.KPISuggestions,
	} {
		for _, f := range list {
			add(f.Title)
			add(f.Description)
			for _, s := range metadataStrings(f.Metadata) {
				add(s)
			}
		}
	}
	return sb.String()
}

// metadataStrings collects string values, including those nested in
// lists and objects, in a stable order.
func metadataStrings(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		out = appendStrings(out, m[k])
	}
	return out
}

func appendStrings(out []string, v any) []string {
	switch t := v.(type) {
	case string:
		out = append(out, t)
	case []any:
		for _, item := range t {
			out = appendStrings(out, item)
		}
	case map[string]any:
		out = append(out, metadataStrings(t)...)
	}
	return out
}
