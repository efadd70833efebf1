package providers

import (
	"context"
)

// Request contains the prompts sent to the reviewing endpoint.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw reply and token usage from one attempt.
type Response struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Reviewer is the reviewing-endpoint abstraction.
type Reviewer interface {
	Review(ctx context.Context, req Request) (Response, error)
	Name() string
}
