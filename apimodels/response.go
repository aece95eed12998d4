package apimodels

import (
	"encoding/json"
	"time"
)

type AnalysisResult struct {
	// Narrative summary of the plan
	Summary string `json:"summary"`

	Insights        []Finding `json:"insights"`
	Recommendations []Finding `json:"recommendations"`
	Risks           []Finding `json:"risks"`
	Opportunities   []Finding `json:"opportunities"`
	KPISuggestions  []Finding `json:"kpiSuggestions"`

	// Scores as reported by the model, nominally 0-100
	AIReadinessScore float64 `json:"aiReadinessScore"`
	ConfidenceScore  float64 `json:"confidenceScore"`

	// Metadata about the analysis
	Metadata *AnalysisMetadata `json:"metadata,omitempty"`
}

// Finding is one titled entry of a result list. Keys the model adds beyond
// title and description (priority, impact, ...) are kept in Metadata.
type Finding struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (f *Finding) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*f = Finding{Title: text}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Finding{}
	// title wins over name and description over detail; the loser is kept
	// in Metadata.
	out.Title = out.takeString(raw, "title", "name")
	out.Description = out.takeString(raw, "description", "detail")

	if m, ok := raw["metadata"].(map[string]any); ok {
		for mk, mv := range m {
			out.setMeta(mk, mv)
		}
		delete(raw, "metadata")
	}
	for k, v := range raw {
		out.setMeta(k, v)
	}
	*f = out
	return nil
}

// takeString removes keys from raw and returns the first one holding a
// string. Remaining keys are moved into Metadata.
func (f *Finding) takeString(raw map[string]any, keys ...string) string {
	var picked string
	found := false
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		delete(raw, k)
		if s, isStr := v.(string); isStr && !found {
			picked, found = s, true
			continue
		}
		f.setMeta(k, v)
	}
	return picked
}

func (f *Finding) setMeta(k string, v any) {
	if f.Metadata == nil {
		f.Metadata = make(map[string]any)
	}
	f.Metadata[k] = v
}

type AnalysisMetadata struct {
	// Model used for analysis
	Model string `json:"model"`

	// Time taken for analysis
	Duration string `json:"duration"`

	// Tokens used in analysis
	TokensUsed int64 `json:"tokensUsed"`

	PromptLength int `json:"promptLength"`

	DataUsage *DataUsage `json:"dataUsage,omitempty"`

	// Deviations of the model output from the requested schema
	SchemaIssues []string `json:"schemaIssues,omitempty"`

	// Set when the model output could not be parsed and defaults were used
	ParseError string `json:"parseError,omitempty"`
}

// DataUsage reports how many submitted names appear in the result text.
type DataUsage struct {
	Score      int      `json:"score"`
	Referenced []string `json:"referenced"`
	Missing    []string `json:"missing"`
	Total      int      `json:"total"`
}

type SectionStatus string

const (
	SectionPending       SectionStatus = "pending"
	SectionApproved      SectionStatus = "approved"
	SectionNeedsRevision SectionStatus = "needs_revision"
)

func (s SectionStatus) Valid() bool {
	switch s {
	case SectionPending, SectionApproved, SectionNeedsRevision:
		return true
	}
	return false
}

// Feedback is a reviewer's response to a submission.
type Feedback struct {
	ID           string                   `json:"id"`
	SubmissionID string                   `json:"submissionId"`
	Reviewer     string                   `json:"reviewer"`
	Comments     string                   `json:"comments,omitempty"`
	Sections     map[string]SectionStatus `json:"sections"`
	CreatedAt    time.Time                `json:"createdAt"`
}

type SubmissionStatus string

const (
	StatusDraft     SubmissionStatus = "draft"
	StatusSubmitted SubmissionStatus = "submitted"
	StatusReviewed  SubmissionStatus = "reviewed"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusReviewed:
		return true
	}
	return false
}

type Submission struct {
	ID        string           `json:"id"`
	Status    SubmissionStatus `json:"status"`
	Request   AnalysisRequest  `json:"request"`
	Analysis  *AnalysisResult  `json:"analysis,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
