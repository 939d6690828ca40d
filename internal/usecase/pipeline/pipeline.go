package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// Outcome labels for docqa_pipeline_documents_total.
const (
	outcomeKept          = "kept"
	outcomeLowConfidence = "low_confidence"
	outcomeLowRelevance  = "low_relevance"
	outcomeNoPassages    = "no_passages"
)

// Pipeline turns raw search hits into threshold-filtered document summaries.
type Pipeline struct {
	scorer      PassageScorer
	concurrency int
	logger      *zap.Logger
}

// New creates a Pipeline. concurrency <= 1 scores passages sequentially.
func New(scorer PassageScorer, concurrency int, logger *zap.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{scorer: scorer, concurrency: concurrency, logger: logger.Named("pipeline")}
}

// Run filters hits by confidence, then by passage relevance, preserving retrieval order.
// Hits below confidenceThreshold (percent) are dropped before any scoring call.
func (p *Pipeline) Run(
	ctx context.Context, hits []domain.SearchHit, query string,
	confidenceThreshold, relevanceThreshold float64,
) []domain.DocumentSummary {
	summaries := make([]domain.DocumentSummary, 0, len(hits))

	for i := range hits {
		hit := &hits[i]

		confidence := hit.ConfidencePercent()
		if confidence < confidenceThreshold {
			p.discard(hit, outcomeLowConfidence)
			continue
		}

		scored := p.scoreAll(ctx, query, hit.Passages)

		if relevanceThreshold > 0 && !anyAtLeast(scored, relevanceThreshold) {
			p.discard(hit, outcomeLowRelevance)
			continue
		}

		selected := make([]string, 0, len(scored))
		top := 0.0
		for _, sp := range scored {
			if sp.Score < relevanceThreshold {
				continue
			}
			if len(selected) == 0 || sp.Score > top {
				top = sp.Score
			}
			selected = append(selected, sp.Text)
		}

		// Zero-passage hits reach here at threshold 0.
		if len(selected) == 0 {
			p.discard(hit, outcomeNoPassages)
			continue
		}

		metrics.PipelineDocumentsTotal.WithLabelValues(outcomeKept).Inc()
		summaries = append(summaries, domain.DocumentSummary{
			DocumentID:        hit.DocumentID,
			Author:            hit.Author,
			Title:             hit.Title,
			ConfidencePercent: confidence,
			TopRelevance:      top,
			Passages:          selected,
		})
	}

	return summaries
}

func (p *Pipeline) discard(hit *domain.SearchHit, outcome string) {
	metrics.PipelineDocumentsTotal.WithLabelValues(outcome).Inc()
	p.logger.Debug("document discarded",
		zap.String("document_id", hit.DocumentID),
		zap.String("reason", outcome),
	)
}

// scoreAll scores passages, in parallel when configured. Results keep passage order.
func (p *Pipeline) scoreAll(ctx context.Context, query string, passages []string) []domain.ScoredPassage {
	out := make([]domain.ScoredPassage, len(passages))

	if p.concurrency == 1 || len(passages) < 2 {
		for i, text := range passages {
			out[i] = p.scorer.Score(ctx, query, text)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, text := range passages {
		g.Go(func() error {
			out[i] = p.scorer.Score(ctx, query, text)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func anyAtLeast(scored []domain.ScoredPassage, threshold float64) bool {
	for _, sp := range scored {
		if sp.Score >= threshold {
			return true
		}
	}
	return false
}
