package watson

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/filter"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

func newTestDiscovery(url string) *Discovery {
	return NewDiscovery(&DiscoveryConfig{
		URL:          url,
		ProjectID:    "proj-1",
		CollectionID: "coll-1",
		Version:      "2021-08-01",
		HTTPClient:   http.DefaultClient,
	})
}

const discoveryResponse = `{
  "matching_results": 3,
  "results": [
    {
      "document_id": "doc-1",
      "extracted_metadata": {"author": ["Ada Lovelace", "Charles Babbage"], "title": "Engines", "filename": "engines.pdf"},
      "result_metadata": {"confidence": 0.9},
      "document_passages": [{"passage_text": "first"}, {"passage_text": "second"}]
    },
    {
      "document_id": "doc-2",
      "extracted_metadata": {"author": "Grace Hopper", "filename": "cobol.txt"},
      "result_metadata": {},
      "document_passages": [{}]
    },
    {
      "document_id": "doc-3",
      "extracted_metadata": {"author": 42},
      "result_metadata": {"confidence": 0.25}
    }
  ]
}`

func TestDiscovery_Query(t *testing.T) {
	var gotBody queryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v2/projects/proj-1/query" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if v := r.URL.Query().Get("version"); v != "2021-08-01" {
			t.Errorf("unexpected version: %s", v)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, discoveryResponse)
	}))
	defer server.Close()

	d := newTestDiscovery(server.URL)
	hits, err := d.Query(context.Background(), "analytical engine",
		filter.DateRange{Start: "2024-01-01", End: "2024-12-31"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if gotBody.NaturalLanguageQuery != "analytical engine" {
		t.Errorf("natural_language_query = %q", gotBody.NaturalLanguageQuery)
	}
	if gotBody.Count != DefaultResultCount {
		t.Errorf("count = %d, want %d", gotBody.Count, DefaultResultCount)
	}
	if gotBody.Filter != "date>=2024-01-01 AND date<=2024-12-31" {
		t.Errorf("filter = %q", gotBody.Filter)
	}

	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}

	h := hits[0]
	if h.DocumentID != "doc-1" || h.Author != "Ada Lovelace" || h.Title != "Engines" || h.Confidence != 0.9 {
		t.Errorf("hit[0] = %+v", h)
	}
	if len(h.Passages) != 2 || h.Passages[0] != "first" || h.Passages[1] != "second" {
		t.Errorf("hit[0].Passages = %v", h.Passages)
	}

	h = hits[1]
	if h.Author != "Grace Hopper" || h.Title != "cobol.txt" || h.Confidence != 0 {
		t.Errorf("hit[1] = %+v", h)
	}
	if len(h.Passages) != 1 || h.Passages[0] != domain.MissingPassageText {
		t.Errorf("hit[1].Passages = %v", h.Passages)
	}

	h = hits[2]
	if h.Author != domain.UnknownAuthor || h.Title != domain.UntitledDocument || len(h.Passages) != 0 {
		t.Errorf("hit[2] = %+v", h)
	}
}

func TestDiscovery_Query_NoFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["filter"]; ok {
			t.Errorf("filter must be omitted when no dates are given, got %v", raw["filter"])
		}
		_, _ = io.WriteString(w, `{"results": []}`)
	}))
	defer server.Close()

	hits, err := newTestDiscovery(server.URL).Query(context.Background(), "q", filter.DateRange{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestDiscovery_Query_Error(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error": "service busy", "code": 503}`)
	}))
	defer server.Close()

	_, err := newTestDiscovery(server.URL).Query(context.Background(), "q", filter.DateRange{})
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
	if !strings.Contains(err.Error(), "service busy") {
		t.Errorf("error should carry the service message: %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected APIError 503, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one call (no retry), got %d", calls)
	}
}

func TestDiscovery_Query_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestDiscovery(url).Query(context.Background(), "q", filter.DateRange{})
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
}

func TestDiscovery_AddDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/projects/proj-1/collections/coll-1/documents" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "report.pdf" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "%PDF-1.4" {
			t.Errorf("content = %q", data)
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"document_id": "new-doc", "status": "processing"}`)
	}))
	defer server.Close()

	receipt, err := newTestDiscovery(server.URL).AddDocument(
		context.Background(), "report.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if receipt.DocumentID != "new-doc" || receipt.Status != "processing" {
		t.Errorf("receipt = %+v", receipt)
	}
}

func TestDiscovery_AddDocument_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"errors": [{"code": 400, "message": "unsupported file"}]}`)
	}))
	defer server.Close()

	_, err := newTestDiscovery(server.URL).AddDocument(context.Background(), "a.txt", strings.NewReader("x"))
	if !errors.Is(err, domain.ErrIngestion) {
		t.Fatalf("expected ErrIngestion, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported file") {
		t.Errorf("error should carry the service message: %v", err)
	}
}
