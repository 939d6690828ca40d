package relevance

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// Scorer rates how topically relevant a passage is to a query.
type Scorer struct {
	categorizer Categorizer
	logger      *zap.Logger
}

// New creates a Scorer.
func New(categorizer Categorizer, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{categorizer: categorizer, logger: logger.Named("relevance")}
}

// Score categorizes query and passage together and returns the top category confidence.
// It never fails: a categorization error yields score 0 with Scored=false.
func (s *Scorer) Score(ctx context.Context, query, passage string) domain.ScoredPassage {
	if passage == "" {
		return domain.ScoredPassage{Text: passage, Score: 0, Scored: true}
	}

	score, err := s.categorizer.TopCategoryScore(ctx, query+" "+passage)
	if err != nil {
		metrics.ScoringFailuresTotal.Inc()
		s.logger.Warn("passage scoring failed, using 0",
			zap.Int("passage_len", len(passage)),
			zap.Error(err),
		)
		return domain.ScoredPassage{Text: passage, Score: 0, Scored: false}
	}

	return domain.ScoredPassage{Text: passage, Score: clamp(score), Scored: true}
}

func clamp(v float64) float64 {
	switch {
	case v != v || v < 0: // NaN
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
