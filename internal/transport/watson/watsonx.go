package watson

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// WatsonxAPIVersion is the watsonx.ai REST API version date.
const WatsonxAPIVersion = "2023-05-29"

// WatsonxConfig holds watsonx.ai text generation settings.
type WatsonxConfig struct {
	URL               string
	ProjectID         string
	Model             string
	MaxNewTokens      int
	Temperature       float64
	RepetitionPenalty float64
	HTTPClient        *http.Client
}

// Watsonx generates text with a watsonx.ai foundation model.
type Watsonx struct {
	rest      restClient
	projectID string
	model     string
	params    generationParams
}

type generationParams struct {
	DecodingMethod    string  `json:"decoding_method"`
	MaxNewTokens      int     `json:"max_new_tokens"`
	MinNewTokens      int     `json:"min_new_tokens"`
	Temperature       float64 `json:"temperature"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// NewWatsonx creates a watsonx.ai generator with greedy decoding.
func NewWatsonx(cfg *WatsonxConfig) *Watsonx {
	return &Watsonx{
		rest: restClient{
			baseURL:    cfg.URL,
			version:    WatsonxAPIVersion,
			httpClient: cfg.HTTPClient,
		},
		projectID: cfg.ProjectID,
		model:     cfg.Model,
		params: generationParams{
			DecodingMethod:    "greedy",
			MaxNewTokens:      cfg.MaxNewTokens,
			MinNewTokens:      0,
			Temperature:       cfg.Temperature,
			RepetitionPenalty: cfg.RepetitionPenalty,
		},
	}
}

// WithModel returns a copy of the generator bound to another model.
func (w *Watsonx) WithModel(model string) *Watsonx {
	c := *w
	c.model = model
	return &c
}

// Model returns the model id.
func (w *Watsonx) Model() string { return w.model }

type textGenerationRequest struct {
	ModelID    string           `json:"model_id"`
	Input      string           `json:"input"`
	ProjectID  string           `json:"project_id"`
	Parameters generationParams `json:"parameters"`
}

type textGenerationResponse struct {
	Results []struct {
		GeneratedText       string `json:"generated_text"`
		GeneratedTokenCount int    `json:"generated_token_count"`
		InputTokenCount     int    `json:"input_token_count"`
		StopReason          string `json:"stop_reason"`
	} `json:"results"`
}

// Generate implements the answer generator contract. The system instruction is inlined
// ahead of the body since the text generation endpoint takes a single input string.
func (w *Watsonx) Generate(ctx context.Context, p domain.Prompt) (domain.Generation, error) {
	req := textGenerationRequest{
		ModelID:    w.model,
		Input:      renderInput(p),
		ProjectID:  w.projectID,
		Parameters: w.params,
	}

	var resp textGenerationResponse
	start := time.Now()
	err := w.rest.postJSON(ctx, "GenerateText", "/ml/v1/text/generation", req, &resp)
	metrics.ObserveExternal(metrics.ServiceWatsonx, "generate", time.Since(start).Seconds(), err)
	if err != nil {
		return domain.Generation{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	if len(resp.Results) == 0 {
		return domain.Generation{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, errors.New("empty generation response"))
	}

	r := resp.Results[0]
	metrics.GenerationTokensTotal.WithLabelValues(metrics.ServiceWatsonx, w.model, "input").Add(float64(r.InputTokenCount))
	metrics.GenerationTokensTotal.WithLabelValues(metrics.ServiceWatsonx, w.model, "output").Add(float64(r.GeneratedTokenCount))

	return domain.Generation{
		Text:         strings.TrimSpace(r.GeneratedText),
		Model:        w.model,
		InputTokens:  r.InputTokenCount,
		OutputTokens: r.GeneratedTokenCount,
	}, nil
}

func renderInput(p domain.Prompt) string {
	if p.System == "" {
		return p.User
	}
	return "System: " + p.System + "\n\n" + p.User
}
