package chi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// queryRequest is the POST /query body. Thresholds accept JSON numbers or numeric strings,
// since HTML forms submit strings.
type queryRequest struct {
	Query               string          `json:"query"`
	StartDate           string          `json:"start_date"`
	EndDate             string          `json:"end_date"`
	ConfidenceThreshold json.RawMessage `json:"confidence_threshold"`
	RelevanceThreshold  json.RawMessage `json:"relevance_threshold"`
}

type queryResponse struct {
	Query             string                `json:"query"`
	Answer            string                `json:"answer"`
	RelevantDocuments []documentSummaryJSON `json:"relevant_documents"`
	SearchHistory     []domain.QueryRecord  `json:"search_history"`
}

type documentSummaryJSON struct {
	DocumentID   string   `json:"document_id"`
	Author       string   `json:"author"`
	Title        string   `json:"title"`
	Confidence   string   `json:"confidence"`
	TopRelevance string   `json:"top_relevance"`
	Passages     []string `json:"passages"`
}

type uploadResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// parseThreshold reads an optional threshold; absent, null or "" means 0.
func parseThreshold(raw json.RawMessage, name string) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, domain.NewParameterError(name + " must be a number.")
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, domain.NewParameterError(name + " must be a number.")
	}
	return v, nil
}

func summariesToJSON(docs []domain.DocumentSummary) []documentSummaryJSON {
	out := make([]documentSummaryJSON, len(docs))
	for i, d := range docs {
		passages := d.Passages
		if passages == nil {
			passages = []string{}
		}
		out[i] = documentSummaryJSON{
			DocumentID:   d.DocumentID,
			Author:       d.Author,
			Title:        d.Title,
			Confidence:   fmt.Sprintf("%.2f%%", d.ConfidencePercent),
			TopRelevance: fmt.Sprintf("%.2f", d.TopRelevance),
			Passages:     passages,
		}
	}
	return out
}

func nonNilRecords(recs []domain.QueryRecord) []domain.QueryRecord {
	if recs == nil {
		return []domain.QueryRecord{}
	}
	return recs
}
