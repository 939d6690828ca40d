package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// Config holds the Gemini API settings.
type Config struct {
	APIKey      string
	BaseURL     string // override for tests and proxies
	Model       string
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

// Generator produces answers with the Gemini Developer API.
type Generator struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	logger      *zap.Logger
}

// NewGenerator creates a Gemini generator.
func NewGenerator(ctx context.Context, cfg *Config) (*Generator, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: float32(cfg.Temperature),
		logger:      logger.Named("gemini"),
	}, nil
}

// Model returns the configured model id.
func (g *Generator) Model() string { return g.model }

// Generate sends the user prompt with the system prompt as a system instruction.
func (g *Generator) Generate(ctx context.Context, prompt domain.Prompt) (domain.Generation, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if prompt.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt.User), cfg)
	var text string
	if err == nil {
		text = strings.TrimSpace(resp.Text())
		if text == "" {
			err = errors.New("empty candidate text")
		}
	}
	metrics.ObserveExternal(metrics.ServiceGemini, "generate_content", time.Since(start).Seconds(), err)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("gemini generate: %v: %w", err, domain.ErrGenerationFailed)
	}

	gen := domain.Generation{Text: text, Model: g.model}
	if u := resp.UsageMetadata; u != nil {
		gen.InputTokens = int(u.PromptTokenCount)
		gen.OutputTokens = int(u.CandidatesTokenCount)
		metrics.GenerationTokensTotal.WithLabelValues(metrics.ServiceGemini, g.model, "input").Add(float64(gen.InputTokens))
		metrics.GenerationTokensTotal.WithLabelValues(metrics.ServiceGemini, g.model, "output").Add(float64(gen.OutputTokens))
	}
	g.logger.Debug("content generated", zap.Int("output_tokens", gen.OutputTokens))
	return gen, nil
}
