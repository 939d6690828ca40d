package ask

import (
	"context"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/filter"
)

// Retriever searches the document index.
type Retriever interface {
	Query(ctx context.Context, query string, dates filter.DateRange) ([]domain.SearchHit, error)
}

// ResultFilter reduces search hits to threshold-passing summaries.
type ResultFilter interface {
	Run(ctx context.Context, hits []domain.SearchHit, query string,
		confidenceThreshold, relevanceThreshold float64) []domain.DocumentSummary
}

// Synthesizer writes an answer from summaries. It never fails.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, docs []domain.DocumentSummary) string
}

// HistoryLog records answered queries.
type HistoryLog interface {
	Append(rec domain.QueryRecord)
	Snapshot() []domain.QueryRecord
}
