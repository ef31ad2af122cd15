package interfaces

import "context"

// Oracle represents the planning model: text prompt in, text reply out
type Oracle interface {
	// Query sends the prompts and returns the raw reply text
	Query(ctx context.Context, userPrompt, systemPrompt string) (string, error)
}
