package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/sozercan/aop-analyst/apimodels"
)

type Stats struct {
	Length          int             `json:"length"`
	Lines           int             `json:"lines"`
	Words           int             `json:"words"`
	EstimatedTokens int             `json:"estimatedTokens"`
	Sections        []SectionStat   `json:"sections"`
	Entities        []EntityMention `json:"entities"`

	BusinessMetrics int `json:"businessMetrics"`
	AIMetrics       int `json:"aiMetrics"`
	Initiatives     int `json:"initiatives"`
}

type SectionStat struct {
	Title  string `json:"title"`
	Length int    `json:"length"`
}

// EntityMention counts how often a submitted name occurs in the prompt.
type EntityMention struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

// Analyze computes size statistics for a built prompt. Token count is the
// usual four-characters-per-token estimate.
func Analyze(prompt string, req apimodels.AnalysisRequest) Stats {
	form := req.AOPFormData
	chars := utf8.RuneCountInString(prompt)

	st := Stats{
		Length:          chars,
		Lines:           strings.Count(prompt, "\n"),
		Words:           len(strings.Fields(prompt)),
		EstimatedTokens: (chars + 3) / 4,
		Sections:        sections(prompt),
		BusinessMetrics: len(form.BusinessMetrics),
		AIMetrics:       len(form.AIMetrics),
		Initiatives:     len(form.Initiatives),
	}

	lower := strings.ToLower(prompt)
	count := func(kind, name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		st.Entities = append(st.Entities, EntityMention{
			Kind:     kind,
			Name:     name,
			Mentions: strings.Count(lower, strings.ToLower(name)),
		})
	}

	count("department", req.DepartmentName)
	for _, m := range form.BusinessMetrics {
		count("businessMetric", m.Name)
	}
	for _, m := range form.AIMetrics {
		count("aiMetric", m.Name)
	}
	for _, in := range form.Initiatives {
		count("initiative", in.Name)
	}
	return st
}

// sections splits the prompt on its "## " headers. Text before the first
// header is reported as "PREAMBLE".
func sections(prompt string) []SectionStat {
	var out []SectionStat
	current := SectionStat{Title: "PREAMBLE"}

	for _, line := range strings.SplitAfter(prompt, "\n") {
		if strings.HasPrefix(line, "## ") {
			if current.Length > 0 || current.Title != "PREAMBLE" {
				out = append(out, current)
			}
			current = SectionStat{Title: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
		}
		current.Length += utf8.RuneCountInString(line)
	}
	if current.Length > 0 {
		out = append(out, current)
	}
	return out
}
