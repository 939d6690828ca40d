package watson

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// DefaultCategoriesLimit is the number of categories requested per analysis.
const DefaultCategoriesLimit = 3

// NLUConfig holds Natural Language Understanding v1 settings.
type NLUConfig struct {
	URL             string
	Version         string
	CategoriesLimit int
	HTTPClient      *http.Client
}

// NLU is a Watson Natural Language Understanding client limited to category analysis.
type NLU struct {
	rest  restClient
	limit int
}

// NewNLU creates an NLU client.
func NewNLU(cfg *NLUConfig) *NLU {
	limit := cfg.CategoriesLimit
	if limit <= 0 {
		limit = DefaultCategoriesLimit
	}
	return &NLU{
		rest: restClient{
			baseURL:    cfg.URL,
			version:    cfg.Version,
			httpClient: cfg.HTTPClient,
		},
		limit: limit,
	}
}

type analyzeRequest struct {
	Text     string `json:"text"`
	Features struct {
		Categories struct {
			Limit int `json:"limit"`
		} `json:"categories"`
	} `json:"features"`
}

type analyzeResponse struct {
	Categories []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	} `json:"categories"`
}

// TopCategoryScore categorizes text and returns the confidence of the top category,
// or 0 when the service returns no categories.
func (n *NLU) TopCategoryScore(ctx context.Context, text string) (float64, error) {
	var req analyzeRequest
	req.Text = text
	req.Features.Categories.Limit = n.limit

	var resp analyzeResponse
	start := time.Now()
	err := n.rest.postJSON(ctx, "Analyze", "/v1/analyze", req, &resp)
	metrics.ObserveExternal(metrics.ServiceNLU, "analyze", time.Since(start).Seconds(), err)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrScoringFailed, err)
	}

	if len(resp.Categories) == 0 {
		return 0, nil
	}
	return resp.Categories[0].Score, nil
}
