package ask

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/query"
	"github.com/kailas-cloud/docqa/internal/logger"
)

// Result is the outcome of one answered query.
type Result struct {
	Query     string
	Answer    string
	Documents []domain.DocumentSummary
	History   []domain.QueryRecord
}

// Service answers validated queries: retrieve, filter, synthesize, record.
type Service struct {
	retriever   Retriever
	filter      ResultFilter
	synthesizer Synthesizer
	history     HistoryLog
	logger      *zap.Logger
}

// New creates an ask service.
func New(
	retriever Retriever, filter ResultFilter, synthesizer Synthesizer,
	history HistoryLog, logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever:   retriever,
		filter:      filter,
		synthesizer: synthesizer,
		history:     history,
		logger:      logger,
	}
}

// Ask runs the full query flow. Only retrieval can fail; the error wraps domain.ErrRetrieval.
// When no document survives filtering the answer is empty and no generation call is made.
func (s *Service) Ask(ctx context.Context, req query.Request) (Result, error) {
	start := time.Now()
	log := logger.FromContext(ctx, s.logger)

	hits, err := s.retriever.Query(ctx, req.Text(), req.Dates())
	if err != nil {
		return Result{}, fmt.Errorf("search documents: %w", err)
	}

	docs := s.filter.Run(ctx, hits, req.Text(), req.ConfidenceThreshold(), req.RelevanceThreshold())

	answer := ""
	if len(docs) > 0 {
		answer = s.synthesizer.Synthesize(ctx, req.Text(), docs)
	}

	s.history.Append(domain.NewQueryRecord(req.Text(), answer))

	log.Info("query answered",
		zap.Int("hits", len(hits)),
		zap.Int("kept", len(docs)),
		zap.Bool("answered", answer != ""),
		zap.Float64("confidence_threshold", req.ConfidenceThreshold()),
		zap.Float64("relevance_threshold", req.RelevanceThreshold()),
		zap.Duration("latency", time.Since(start)),
	)

	return Result{
		Query:     req.Text(),
		Answer:    answer,
		Documents: docs,
		History:   s.history.Snapshot(),
	}, nil
}
