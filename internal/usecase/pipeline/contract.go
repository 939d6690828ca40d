package pipeline

import (
	"context"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// PassageScorer rates a passage against the query. Implementations must not fail.
type PassageScorer interface {
	Score(ctx context.Context, query, passage string) domain.ScoredPassage
}
