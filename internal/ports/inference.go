package ports

import "context"

// TextModel abstracts the inference backend. Adapters wrap a hosted API;
// a nil TextModel means run on deterministic fallbacks only.
type TextModel interface {
	// Complete returns the raw completion text for a prompt.
	Complete(ctx context.Context, model string, prompt string) (string, error)
	// Embed returns an embedding vector for the text.
	Embed(ctx context.Context, model string, text string) ([]float64, error)
}
