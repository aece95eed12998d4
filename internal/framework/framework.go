// Package framework holds the editable analysis framework: the weights,
// focus areas and principles that shape the analysis prompt.
//
// A framework document is always handled whole. Stores overwrite it in one
// step and reject writes whose version does not match the stored one.
package framework

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Framework struct {
	// Version increments on every save; 0 means never saved
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`

	Dimensions           Dimensions        `json:"dimensions"`
	FocusAreas           []FocusArea       `json:"focusAreas"`
	Principles           []string          `json:"principles"`
	OutputStructure      []string          `json:"outputStructure"`
	DepartmentGuidelines map[string]string `json:"departmentGuidelines"`
}

type Dimensions struct {
	FinancialHealth    Dimension `json:"financialHealth"`
	StrategicAlignment Dimension `json:"strategicAlignment"`
	AIReadiness        Dimension `json:"aiReadiness"`
}

type Dimension struct {
	Weight      int    `json:"weight"`
	Description string `json:"description,omitempty"`
}

type FocusArea struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// NamedDimension pairs a dimension with its display label.
type NamedDimension struct {
	Label string
	Dimension
}

// List returns the dimensions in their fixed display order.
func (d Dimensions) List() []NamedDimension {
	return []NamedDimension{
		{Label: "Financial Health", Dimension: d.FinancialHealth},
		{Label: "Strategic Alignment", Dimension: d.StrategicAlignment},
		{Label: "AI Readiness", Dimension: d.AIReadiness},
	}
}

func (d Dimensions) TotalWeight() int {
	return d.FinancialHealth.Weight + d.StrategicAlignment.Weight + d.AIReadiness.Weight
}

// Default returns the built-in framework document.
func Default() *Framework {
	return &Framework{
		Dimensions: Dimensions{
			FinancialHealth: Dimension{
				Weight:      40,
				Description: "Budget efficiency, cost structure and expected return on spend",
			},
			StrategicAlignment: Dimension{
				Weight:      35,
				Description: "Fit between initiatives, company priorities and stated metrics",
			},
			AIReadiness: Dimension{
				Weight:      25,
				Description: "Data maturity, AI adoption and capability to execute AI initiatives",
			},
		},
		FocusAreas: []FocusArea{
			{Name: "Cost Optimization", Enabled: true},
			{Name: "Revenue Growth", Enabled: true},
			{Name: "AI Adoption", Enabled: true},
			{Name: "Risk Management", Enabled: true},
			{Name: "Talent and Capability", Enabled: false},
		},
		Principles: []string{
			"Ground every statement in the submitted data",
			"Refer to the department's actual metrics and initiatives by name, never to generic examples",
			"Quantify impact wherever the submission provides numbers",
			"Call out missing, inconsistent or unrealistic data explicitly",
		},
		OutputStructure: []string{
			"summary",
			"insights",
			"recommendations",
			"risks",
			"opportunities",
			"kpiSuggestions",
			"aiReadinessScore",
			"confidenceScore",
		},
		DepartmentGuidelines: map[string]string{
			"Finance":     "Emphasise forecasting accuracy, close-cycle efficiency and working capital.",
			"Engineering": "Emphasise delivery throughput, reliability and infrastructure cost per unit.",
			"Marketing":   "Emphasise acquisition cost, pipeline contribution and campaign attribution.",
			"Operations":  "Emphasise process automation, cycle time and service levels.",
		},
	}
}

// Clone returns a deep copy.
func (f *Framework) Clone() *Framework {
	if f == nil {
		return nil
	}
	out := *f
	out.FocusAreas = append([]FocusArea(nil), f.FocusAreas...)
	out.Principles = append([]string(nil), f.Principles...)
	out.OutputStructure = append([]string(nil), f.OutputStructure...)
	if f.DepartmentGuidelines != nil {
		out.DepartmentGuidelines = make(map[string]string, len(f.DepartmentGuidelines))
		for k, v := range f.DepartmentGuidelines {
			out.DepartmentGuidelines[k] = v
		}
	}
	return &out
}

// EnabledFocusAreas returns the names of enabled focus areas in document order.
func (f *Framework) EnabledFocusAreas() []string {
	var out []string
	for _, fa := range f.FocusAreas {
		if fa.Enabled {
			out = append(out, fa.Name)
		}
	}
	return out
}

// GuidelineFor looks up guidance for a department, ignoring case and
// surrounding whitespace.
func (f *Framework) GuidelineFor(department string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(department))
	if want == "" {
		return "", false
	}
	for _, k := range f.guidelineKeys() {
		if strings.ToLower(strings.TrimSpace(k)) == want {
			return f.DepartmentGuidelines[k], true
		}
	}
	return "", false
}

func (f *Framework) guidelineKeys() []string {
	keys := make([]string, 0, len(f.DepartmentGuidelines))
	for k := range f.DepartmentGuidelines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary renders the framework as plain text for people and for the chat
// editor's prompt.
func Summary(f *Framework) string {
	var sb strings.Builder

	if f.Version == 0 {
		sb.WriteString("Framework version 0 (default, never saved)\n")
	} else {
		fmt.Fprintf(&sb, "Framework version %d (updated %s)\n", f.Version, f.UpdatedAt.UTC().Format(time.RFC3339))
	}

	sb.WriteString("\nDimension weights:\n")
	for _, d := range f.Dimensions.List() {
		fmt.Fprintf(&sb, "- %s: %d%%", d.Label, d.Weight)
		if d.Description != "" {
			fmt.Fprintf(&sb, " (%s)", d.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nFocus areas:\n")
	if len(f.FocusAreas) == 0 {
		sb.WriteString("- None\n")
	}
	for _, fa := range f.FocusAreas {
		state := "disabled"
		if fa.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(&sb, "- %s: %s\n", fa.Name, state)
	}

	sb.WriteString("\nPrinciples:\n")
	for i, p := range f.Principles {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}

	fmt.Fprintf(&sb, "\nOutput structure: %s\n", strings.Join(f.OutputStructure, ", "))

	keys := f.guidelineKeys()
	if len(keys) == 0 {
		sb.WriteString("Department guidelines: none\n")
	} else {
		fmt.Fprintf(&sb, "Department guidelines: %s\n", strings.Join(keys, ", "))
	}

	return sb.String()
}
