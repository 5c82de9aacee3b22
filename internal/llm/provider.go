package llm

import "context"

// Provider sends a prompt to a language-model service and returns the raw
// text response. Callers own the failure policy: the relevance filter fails
// open on error, the classifier fails safe.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
