package answer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// apologyFormat is returned to the user in place of an answer when generation fails.
const apologyFormat = "I apologize, but an error occurred while generating the response: %v"

// Config holds Synthesizer dependencies.
type Config struct {
	Generator Generator
	Provider  string // metrics label
	Template  string
	Logger    *zap.Logger
}

// Synthesizer writes a prose answer from filtered document summaries.
type Synthesizer struct {
	gen         Generator
	provider    string
	instruction string
	logger      *zap.Logger
}

// New creates a Synthesizer. It fails only on an unknown template name.
func New(cfg *Config) (*Synthesizer, error) {
	instruction, err := instructionFor(cfg.Template)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		gen:         cfg.Generator,
		provider:    cfg.Provider,
		instruction: instruction,
		logger:      logger.Named("answer"),
	}, nil
}

// Synthesize asks the generator for an answer grounded in docs. Generation failures are
// reported in-band as an apology string; the call never fails.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, docs []domain.DocumentSummary) string {
	prompt := domain.Prompt{
		System: s.instruction,
		User:   fmt.Sprintf(userPromptFormat, query, buildContext(docs)),
	}

	start := time.Now()
	gen, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		metrics.GenerationFailuresTotal.WithLabelValues(s.provider).Inc()
		s.logger.Warn("answer generation failed",
			zap.String("provider", s.provider),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Sprintf(apologyFormat, err)
	}

	s.logger.Debug("answer generated",
		zap.String("model", gen.Model),
		zap.Int("documents", len(docs)),
		zap.Int("output_tokens", gen.OutputTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return sanitize(gen.Text)
}
