package llm

import (
	"context"
	"errors"
)

var ErrMissingAPIKey = errors.New("LLM API key is not configured")

type Provider interface {
	// Analyze sends the messages to the model and returns its text reply
	Analyze(ctx context.Context, systemMessages []string, userMessages []string, opts ...Option) (*Response, error)
}

type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

type Option func(*Options)

type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	// JSONMode asks the model for a single JSON object
	JSONMode bool
}

func WithModel(model string) Option {
	return func(o *Options) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithJSONMode() Option {
	return func(o *Options) { o.JSONMode = true }
}

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

type Response struct {
	Content string
	Model   string
	Usage   Usage
}
