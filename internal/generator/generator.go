// Package generator defines the text-generation collaborator interface and
// its production implementation.
package generator

import "context"

// TextGenerator produces text from a prompt. The production implementation
// calls an OpenAI-compatible chat-completions API; tests substitute a mock.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
