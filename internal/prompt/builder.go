// Package prompt renders an AOP submission and the analysis framework into
// the text sent to the model.
//
// Build is a pure function: the same request and framework always produce
// the same bytes. Map-valued inputs are emitted in sorted key order and empty
// inputs render as "None provided" instead of being left out.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sozercan/aop-analyst/apimodels"
	"github.com/sozercan/aop-analyst/internal/framework"
)

const NoneProvided = "None provided"

const rolePreamble = `You are a senior financial analyst and AI strategy advisor reviewing an Annual Operating Plan (AOP) submission.
Your analysis must be grounded in the department's actual submitted data: its metrics, initiatives and narrative.`

// Section titles, in the order they appear.
const (
	SectionFramework    = "ANALYSIS FRAMEWORK"
	SectionGuidelines   = "DEPARTMENT GUIDELINES"
	SectionSubmission   = "SUBMISSION"
	SectionRequirements = "DATA USAGE REQUIREMENTS"
	SectionOutput       = "OUTPUT FORMAT"
)

// scoreFields are rendered as numbers in the output schema; every other
// known list field is rendered as an array of findings.
var scoreFields = map[string]bool{
	"aiReadinessScore": true,
	"confidenceScore":  true,
}

var findingFields = map[string]bool{
	"insights":        true,
	"recommendations": true,
	"risks":           true,
	"opportunities":   true,
	"kpiSuggestions":  true,
}

type writer struct {
	sb strings.Builder
}

func (w *writer) line(s string) {
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *writer) linef(format string, args ...any) {
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *writer) section(title string) {
	w.sb.WriteString("\n## ")
	w.sb.WriteString(title)
	w.sb.WriteByte('\n')
}

func (w *writer) subsection(title string) {
	w.sb.WriteString("\n### ")
	w.sb.WriteString(title)
	w.sb.WriteByte('\n')
}

// Build renders the full analysis prompt.
func Build(req apimodels.AnalysisRequest, fw *framework.Framework) string {
	var w writer
	w.line(rolePreamble)

	writeFramework(&w, fw)
	writeGuidelines(&w, fw, req.DepartmentName)
	writeSubmission(&w, req)
	writeRequirements(&w, req)
	writeOutput(&w, fw)

	return w.sb.String()
}

func writeFramework(w *writer, fw *framework.Framework) {
	w.section(SectionFramework)

	w.line("Dimension weights (weight each dimension accordingly in your overall assessment):")
	for _, d := range fw.Dimensions.List() {
		if d.Description != "" {
			w.linef("- %s: %d%% (%s)", d.Label, d.Weight, d.Description)
		} else {
			w.linef("- %s: %d%%", d.Label, d.Weight)
		}
	}

	var enabled, disabled []string
	for _, fa := range fw.FocusAreas {
		if fa.Enabled {
			enabled = append(enabled, fa.Name)
		} else {
			disabled = append(disabled, fa.Name)
		}
	}
	w.line("")
	w.line("Focus areas to emphasise:")
	writeBullets(w, enabled)
	w.line("")
	w.line("Focus areas to de-emphasise:")
	writeBullets(w, disabled)

	w.line("")
	w.line("Guiding principles:")
	if len(fw.Principles) == 0 {
		w.line(NoneProvided)
	}
	for i, p := range fw.Principles {
		w.linef("%d. %s", i+1, p)
	}
}

func writeGuidelines(w *writer, fw *framework.Framework, department string) {
	w.section(SectionGuidelines)
	if g, ok := fw.GuidelineFor(department); ok && strings.TrimSpace(g) != "" {
		w.line(strings.TrimSpace(g))
		return
	}
	w.line(NoneProvided)
}

func writeSubmission(w *writer, req apimodels.AnalysisRequest) {
	form := req.AOPFormData

	w.section(SectionSubmission)
	w.linef("Department: %s", orNone(req.DepartmentName))
	w.linef("Fiscal Year: %s", orNone(req.FiscalYear))

	w.subsection("Business Metrics")
	writeMetrics(w, form.BusinessMetrics)

	w.subsection("AI Performance Metrics")
	writeMetrics(w, form.AIMetrics)

	w.subsection("Strategic Initiatives")
	writeInitiatives(w, form.Initiatives)

	w.subsection("Narrative")
	w.linef("Executive Summary: %s", orNone(form.ExecutiveSummary))
	w.linef("Strategic Priorities: %s", orNone(form.StrategicPriorities))
	w.linef("Challenges: %s", orNone(form.Challenges))
	w.linef("Budget Justification: %s", orNone(form.BudgetJustification))
	for _, k := range sortedKeys(form.Narrative) {
		w.linef("%s: %s", k, orNone(form.Narrative[k]))
	}

	w.subsection("Frequently Asked Questions")
	if len(form.FAQs) == 0 {
		w.line(NoneProvided)
	}
	for i, faq := range form.FAQs {
		w.linef("%d. Q: %s", i+1, orNone(faq.Question))
		w.linef("   A: %s", orNone(faq.Answer))
	}

	w.subsection("Historical Data")
	writeRecords(w, req.HistoricalData)

	w.subsection("Budget Data")
	writeRecords(w, req.BudgetData)

	w.subsection("Supporting Documents")
	writeRecords(w, req.SupportingDocs)
}

func writeMetrics(w *writer, metrics []apimodels.Metric) {
	if len(metrics) == 0 {
		w.line(NoneProvided)
		return
	}
	for i, m := range metrics {
		w.linef("%d. %s", i+1, nameOrUnnamed(m.Name))

		var values []string
		if v := m.Current.String(); v != "" {
			values = append(values, "Current: "+v)
		}
		if v := m.Target.String(); v != "" {
			values = append(values, "Target: "+v)
		}
		if v := strings.TrimSpace(m.Unit); v != "" {
			values = append(values, "Unit: "+v)
		}
		if len(values) > 0 {
			w.linef("   %s", strings.Join(values, " | "))
		}
		if d := strings.TrimSpace(m.Description); d != "" {
			w.linef("   Description: %s", d)
		}
	}
}

func writeInitiatives(w *writer, initiatives []apimodels.Initiative) {
	if len(initiatives) == 0 {
		w.line(NoneProvided)
		return
	}
	for i, in := range initiatives {
		w.linef("%d. %s", i+1, nameOrUnnamed(in.Name))
		if d := strings.TrimSpace(in.Description); d != "" {
			w.linef("   Description: %s", d)
		}

		var details []string
		if v := in.Budget.String(); v != "" {
			details = append(details, "Budget: "+v)
		}
		if v := strings.TrimSpace(in.Timeline); v != "" {
			details = append(details, "Timeline: "+v)
		}
		if v := strings.TrimSpace(in.Owner); v != "" {
			details = append(details, "Owner: "+v)
		}
		if v := strings.TrimSpace(in.Status); v != "" {
			details = append(details, "Status: "+v)
		}
		if len(details) > 0 {
			w.linef("   %s", strings.Join(details, " | "))
		}
		if v := strings.TrimSpace(in.ExpectedImpact); v != "" {
			w.linef("   Expected Impact: %s", v)
		}
	}
}

// writeRecords renders opaque records as canonical JSON, one per line.
// encoding/json sorts map keys, which keeps the output stable.
func writeRecords(w *writer, records []apimodels.Record) {
	if len(records) == 0 {
		w.line(NoneProvided)
		return
	}
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			w.linef("%d. (unrenderable record: %v)", i+1, err)
			continue
		}
		w.linef("%d. %s", i+1, data)
	}
}

func writeRequirements(w *writer, req apimodels.AnalysisRequest) {
	form := req.AOPFormData

	w.section(SectionRequirements)
	w.line("You MUST use the submitted data. Do not use generic examples or placeholder names.")
	if dept := strings.TrimSpace(req.DepartmentName); dept != "" {
		w.linef("- Refer to the department by its name, %q.", dept)
	} else {
		w.line("- The department name was not provided; do not invent one.")
	}
	writeNameRequirement(w, "business metrics", metricNames(form.BusinessMetrics))
	writeNameRequirement(w, "AI performance metrics", metricNames(form.AIMetrics))
	writeNameRequirement(w, "initiatives", initiativeNames(form.Initiatives))
	w.line("- Every insight, risk, opportunity and recommendation must cite at least one submitted metric, initiative or narrative fact.")
	w.line("- Where the data needed for a conclusion is missing, say that it is missing instead of assuming values.")
}

func writeNameRequirement(w *writer, kind string, names []string) {
	if len(names) == 0 {
		w.linef("- No %s were submitted; state this rather than inventing any.", kind)
		return
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	w.linef("- Reference these %s by their exact names: %s.", kind, strings.Join(quoted, ", "))
}

func writeOutput(w *writer, fw *framework.Framework) {
	w.section(SectionOutput)
	w.line("Respond with a single JSON object and nothing else (no prose, no code fences).")

	fields := fw.OutputStructure
	if len(fields) == 0 {
		fields = framework.Default().OutputStructure
	}
	w.linef("The object must contain exactly these keys: %s.", strings.Join(fields, ", "))
	w.line("{")
	for i, f := range fields {
		sep := ","
		if i == len(fields)-1 {
			sep = ""
		}
		switch {
		case findingFields[f]:
			w.linef(`  %q: [{"title": "string", "description": "string"}]%s`, f, sep)
		case scoreFields[f]:
			w.linef(`  %q: 0-100%s`, f, sep)
		default:
			w.linef(`  %q: "string"%s`, f, sep)
		}
	}
	w.line("}")
}

func writeBullets(w *writer, items []string) {
	if len(items) == 0 {
		w.line(NoneProvided)
		return
	}
	for _, it := range items {
		w.linef("- %s", it)
	}
}

func metricNames(metrics []apimodels.Metric) []string {
	var out []string
	for _, m := range metrics {
		if n := strings.TrimSpace(m.Name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func initiativeNames(initiatives []apimodels.Initiative) []string {
	var out []string
	for _, in := range initiatives {
		if n := strings.TrimSpace(in.Name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return NoneProvided
	}
	return s
}

func nameOrUnnamed(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "(unnamed)"
	}
	return s
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
