package watson

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/filter"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// DefaultResultCount is the number of documents requested per query.
const DefaultResultCount = 20

// DiscoveryConfig holds Discovery v2 settings.
type DiscoveryConfig struct {
	URL          string
	ProjectID    string
	CollectionID string
	Version      string
	Count        int
	HTTPClient   *http.Client // must authenticate requests (see NewHTTPClient)
	Logger       *zap.Logger
}

// Discovery is a Watson Discovery v2 client for querying and ingesting documents.
type Discovery struct {
	rest         restClient
	projectID    string
	collectionID string
	count        int
	logger       *zap.Logger
}

// NewDiscovery creates a Discovery client.
func NewDiscovery(cfg *DiscoveryConfig) *Discovery {
	count := cfg.Count
	if count <= 0 {
		count = DefaultResultCount
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discovery{
		rest: restClient{
			baseURL:    cfg.URL,
			version:    cfg.Version,
			httpClient: cfg.HTTPClient,
		},
		projectID:    cfg.ProjectID,
		collectionID: cfg.CollectionID,
		count:        count,
		logger:       logger.Named("discovery"),
	}
}

type queryRequest struct {
	NaturalLanguageQuery string `json:"natural_language_query"`
	Filter               string `json:"filter,omitempty"`
	Count                int    `json:"count"`
}

type queryResponse struct {
	MatchingResults int           `json:"matching_results"`
	Results         []queryResult `json:"results"`
}

type queryResult struct {
	DocumentID        string         `json:"document_id"`
	ExtractedMetadata map[string]any `json:"extracted_metadata"`
	ResultMetadata    struct {
		Confidence *float64 `json:"confidence"`
	} `json:"result_metadata"`
	DocumentPassages []struct {
		PassageText *string `json:"passage_text"`
	} `json:"document_passages"`
}

// Query runs a natural language query restricted to dates. No retries: any failure wraps
// domain.ErrRetrieval.
func (d *Discovery) Query(ctx context.Context, query string, dates filter.DateRange) ([]domain.SearchHit, error) {
	req := queryRequest{
		NaturalLanguageQuery: query,
		Filter:               dates.Expression(),
		Count:                d.count,
	}

	var resp queryResponse
	start := time.Now()
	err := d.rest.postJSON(ctx, "Query", "/v2/projects/"+url.PathEscape(d.projectID)+"/query", req, &resp)
	metrics.ObserveExternal(metrics.ServiceDiscovery, "query", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	d.logger.Debug("discovery query",
		zap.String("filter", req.Filter),
		zap.Int("matching_results", resp.MatchingResults),
		zap.Int("returned", len(resp.Results)),
	)

	hits := make([]domain.SearchHit, len(resp.Results))
	for i := range resp.Results {
		hits[i] = hitFromResult(&resp.Results[i])
	}
	return hits, nil
}

func hitFromResult(r *queryResult) domain.SearchHit {
	hit := domain.SearchHit{
		DocumentID: r.DocumentID,
		Author:     authorFromMetadata(r.ExtractedMetadata),
		Title:      titleFromMetadata(r.ExtractedMetadata),
		Passages:   make([]string, 0, len(r.DocumentPassages)),
	}
	if r.ResultMetadata.Confidence != nil {
		hit.Confidence = *r.ResultMetadata.Confidence
	}
	for _, p := range r.DocumentPassages {
		if p.PassageText == nil {
			hit.Passages = append(hit.Passages, domain.MissingPassageText)
			continue
		}
		hit.Passages = append(hit.Passages, *p.PassageText)
	}
	return hit
}

// authorFromMetadata accepts a string or a list (first element wins); anything else is Unknown.
func authorFromMetadata(md map[string]any) string {
	switch v := md["author"].(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok && s != "" {
				return s
			}
		}
	}
	return domain.UnknownAuthor
}

func titleFromMetadata(md map[string]any) string {
	for _, key := range []string{"title", "filename"} {
		if s, ok := md[key].(string); ok && s != "" {
			return s
		}
	}
	return domain.UntitledDocument
}

type addDocumentResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// AddDocument uploads a file into the configured collection. Failures wrap domain.ErrIngestion.
func (d *Discovery) AddDocument(ctx context.Context, filename string, r io.Reader) (domain.IngestReceipt, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("%w: create form file: %w", domain.ErrIngestion, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("%w: read upload: %w", domain.ErrIngestion, err)
	}
	if err := mw.Close(); err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("%w: close multipart: %w", domain.ErrIngestion, err)
	}

	path := "/v2/projects/" + url.PathEscape(d.projectID) +
		"/collections/" + url.PathEscape(d.collectionID) + "/documents"

	var resp addDocumentResponse
	start := time.Now()
	err = d.rest.post(ctx, "AddDocument", path, mw.FormDataContentType(), &buf, &resp)
	metrics.ObserveExternal(metrics.ServiceDiscovery, "add_document", time.Since(start).Seconds(), err)
	if err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("%w: %w", domain.ErrIngestion, err)
	}

	d.logger.Info("document submitted",
		zap.String("filename", filename),
		zap.String("document_id", resp.DocumentID),
		zap.String("status", resp.Status),
	)
	return domain.IngestReceipt{DocumentID: resp.DocumentID, Status: resp.Status}, nil
}
