package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/config"
	dbRedis "github.com/kailas-cloud/docqa/internal/db/redis"
	"github.com/kailas-cloud/docqa/internal/metrics"
	"github.com/kailas-cloud/docqa/internal/repository/scorecache"
	geminiGen "github.com/kailas-cloud/docqa/internal/transport/gemini"
	openaiGen "github.com/kailas-cloud/docqa/internal/transport/openai"
	"github.com/kailas-cloud/docqa/internal/transport/watson"
	"github.com/kailas-cloud/docqa/internal/usecase/answer"
	askuc "github.com/kailas-cloud/docqa/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/docqa/internal/usecase/health"
	"github.com/kailas-cloud/docqa/internal/usecase/history"
	ingestuc "github.com/kailas-cloud/docqa/internal/usecase/ingest"
	"github.com/kailas-cloud/docqa/internal/usecase/pipeline"
	"github.com/kailas-cloud/docqa/internal/usecase/relevance"
)

// app holds the assembled services handed to the HTTP layer.
type app struct {
	ask     *askuc.Service
	ingest  *ingestuc.Service
	history *history.Log
	health  *healthuc.Service
	store   *dbRedis.Store // nil when the score cache is disabled
}

// Close releases the cache connection, if any.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// buildApp is the composition root: remote clients, decorators, use cases.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	timeout := time.Duration(cfg.HTTP.ClientTimeoutSec) * time.Second

	discoveryTokens := watson.NewTokenSource(cfg.Discovery.APIKey, watson.DefaultIAMURL, timeout)
	discovery := watson.NewDiscovery(&watson.DiscoveryConfig{
		URL:          cfg.Discovery.URL,
		ProjectID:    cfg.Discovery.ProjectID,
		CollectionID: cfg.Discovery.CollectionID,
		Version:      cfg.Discovery.Version,
		Count:        cfg.Discovery.Count,
		HTTPClient:   watson.NewHTTPClient(discoveryTokens, timeout),
		Logger:       logger,
	})

	nluTokens := watson.NewTokenSource(cfg.NLU.APIKey, watson.DefaultIAMURL, timeout)
	var categorizer relevance.Categorizer = watson.NewNLU(&watson.NLUConfig{
		URL:             cfg.NLU.URL,
		Version:         cfg.NLU.Version,
		CategoriesLimit: cfg.NLU.CategoriesLimit,
		HTTPClient:      watson.NewHTTPClient(nluTokens, timeout),
	})

	healthSvc := healthuc.New(logger).
		Register("discovery", watson.NewTokenChecker(discoveryTokens)).
		Register("nlu", watson.NewTokenChecker(nluTokens))

	a := &app{history: history.New(), health: healthSvc}

	if cfg.Cache.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.store = store
		healthSvc.Register("cache", store)
		categorizer = scorecache.New(categorizer, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ScoreCacheTotal, logger)
		logger.Info("Score cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	generator, checker, err := buildGenerator(ctx, cfg, timeout, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	healthSvc.Register("generation", checker)

	synth, err := answer.New(&answer.Config{
		Generator: generator,
		Provider:  cfg.Generation.Provider,
		Template:  cfg.Generation.Template,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create synthesizer: %w", err)
	}

	filter := pipeline.New(relevance.New(categorizer, logger), cfg.Scoring.Concurrency, logger)
	a.ask = askuc.New(discovery, filter, synth, a.history, logger)
	a.ingest = ingestuc.New(discovery, logger)
	return a, nil
}

// buildGenerator picks the text generation backend. The returned checker may be nil
// when the provider offers no cheap probe.
func buildGenerator(
	ctx context.Context, cfg *config.Config, timeout time.Duration, logger *zap.Logger,
) (answer.Generator, healthuc.Checker, error) {
	g := cfg.Generation
	switch g.Provider {
	case config.ProviderOpenAI:
		gen := openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:      g.OpenAI.APIKey,
			BaseURL:     g.OpenAI.BaseURL,
			Model:       g.OpenAI.Model,
			MaxTokens:   g.MaxNewTokens,
			Temperature: g.Temperature,
			Logger:      logger,
		})
		return gen, gen, nil
	case config.ProviderGemini:
		gen, err := geminiGen.NewGenerator(ctx, &geminiGen.Config{
			APIKey:      g.Gemini.APIKey,
			Model:       g.Gemini.Model,
			MaxTokens:   g.MaxNewTokens,
			Temperature: g.Temperature,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create gemini generator: %w", err)
		}
		return gen, nil, nil
	default:
		tokens := watson.NewTokenSource(g.Watsonx.APIKey, watson.DefaultIAMURL, timeout)
		gen := watson.NewWatsonx(&watson.WatsonxConfig{
			URL:               g.Watsonx.URL,
			ProjectID:         g.Watsonx.ProjectID,
			Model:             g.Watsonx.Model,
			MaxNewTokens:      g.MaxNewTokens,
			Temperature:       g.Temperature,
			RepetitionPenalty: g.RepetitionPenalty,
			HTTPClient:        watson.NewHTTPClient(tokens, timeout),
		})
		return gen, watson.NewTokenChecker(tokens), nil
	}
}
