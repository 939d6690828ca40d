// Command credcheck verifies watsonx.ai credentials by asking each configured model for a
// short completion and reporting the first one that answers.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/config"
	"github.com/kailas-cloud/docqa/internal/domain"
	logpkg "github.com/kailas-cloud/docqa/internal/logger"
	"github.com/kailas-cloud/docqa/internal/metrics"
	"github.com/kailas-cloud/docqa/internal/transport/watson"
)

const probePrompt = "Say hello in one short sentence."

// modelGenerator is satisfied by *watson.Watsonx.
type modelGenerator interface {
	Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error)
}

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Register()

	wx := cfg.Generation.Watsonx
	timeout := time.Duration(cfg.HTTP.ClientTimeoutSec) * time.Second
	base := watson.NewWatsonx(&watson.WatsonxConfig{
		URL:               wx.URL,
		ProjectID:         wx.ProjectID,
		Model:             wx.Model,
		MaxNewTokens:      50,
		Temperature:       cfg.Generation.Temperature,
		RepetitionPenalty: cfg.Generation.RepetitionPenalty,
		HTTPClient: watson.NewHTTPClient(
			watson.NewTokenSource(wx.APIKey, watson.DefaultIAMURL, timeout), timeout),
	})

	models := append([]string{wx.Model}, wx.Fallbacks...)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(models))*timeout)
	defer cancel()

	model, ok := firstWorking(ctx, models, func(m string) modelGenerator { return base.WithModel(m) }, logger)
	if !ok {
		logger.Error("no model accepted the credentials", zap.Strings("models", models))
		os.Exit(1)
	}
	fmt.Printf("credentials OK, working model: %s\n", model)
}

// firstWorking probes models in order and returns the first that generates text.
// A 401/403 stops the probe since no other model will accept the same key.
func firstWorking(
	ctx context.Context, models []string, forModel func(string) modelGenerator, logger *zap.Logger,
) (string, bool) {
	for _, m := range models {
		gen, err := forModel(m).Generate(ctx, domain.Prompt{User: probePrompt})
		if err != nil {
			if watson.IsUnauthorized(err) {
				logger.Error("credentials rejected", zap.String("model", m), zap.Error(err))
				return "", false
			}
			logger.Warn("model failed", zap.String("model", m), zap.Error(err))
			continue
		}
		logger.Info("model works",
			zap.String("model", m),
			zap.Int("output_tokens", gen.OutputTokens),
		)
		return m, true
	}
	return "", false
}
