package answer

import (
	"context"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (domain.Generation, error)
}
