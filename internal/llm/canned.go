package llm

import (
	"context"
	"sync"
)

// Canned is a Provider that returns a fixed reply. It records the messages it
// was called with so callers can inspect what would have been sent.
type Canned struct {
	Content string
	Err     error

	mu    sync.Mutex
	calls []CannedCall
}

type CannedCall struct {
	System  []string
	User    []string
	Options Options
}

func (c *Canned) Analyze(ctx context.Context, systemMessages []string, userMessages []string, opts ...Option) (*Response, error) {
	options := Options{Model: "canned"}
	for _, opt := range opts {
		opt(&options)
	}

	c.mu.Lock()
	c.calls = append(c.calls, CannedCall{System: systemMessages, User: userMessages, Options: options})
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return &Response{Content: c.Content, Model: options.Model}, nil
}

func (c *Canned) Calls() []CannedCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CannedCall, len(c.calls))
	copy(out, c.calls)
	return out
}
