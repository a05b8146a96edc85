// Package reasoning abstracts the generative model used by the language and
// literature stages. Agents receive a Provider at construction time so tests
// can substitute fakes; a nil Provider means the stage runs on its local
// heuristic only.
package reasoning

import "context"

// Provider produces a completion for a system prompt and user prompt pair.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
