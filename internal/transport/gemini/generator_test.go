package gemini

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
	"github.com/kailas-cloud/docqa/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

func newTestGenerator(t *testing.T, url string) *Generator {
	t.Helper()
	g, err := NewGenerator(context.Background(), &Config{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "gemini-2.5-flash",
		MaxTokens:   1500,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func TestGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
			return
		}
		if _, ok := req["systemInstruction"]; !ok {
			t.Errorf("systemInstruction missing: %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "OVERVIEW\nfine\n"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 21, "candidatesTokenCount": 4, "totalTokenCount": 25}
		}`)
	}))
	defer server.Close()

	gen, err := newTestGenerator(t, server.URL).Generate(context.Background(),
		domain.Prompt{System: "be brief", User: "Query: q"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.Text != "OVERVIEW\nfine" {
		t.Errorf("text = %q", gen.Text)
	}
	if gen.InputTokens != 21 || gen.OutputTokens != 4 {
		t.Errorf("tokens = %d/%d", gen.InputTokens, gen.OutputTokens)
	}
}

func TestGenerator_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), domain.Prompt{User: "q"})
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}
