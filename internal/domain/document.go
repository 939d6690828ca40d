package domain

// Placeholders used when the search service omits document metadata.
const (
	UnknownAuthor      = "Unknown"
	UntitledDocument   = "No Title"
	MissingPassageText = "No Passage Available"
)

// SearchHit is one candidate document returned by retrieval.
type SearchHit struct {
	DocumentID string
	Author     string
	Title      string
	Confidence float64 // [0,1] as reported by the search service
	Passages   []string
}

// ConfidencePercent converts the service confidence to the 0-100 scale.
func (h SearchHit) ConfidencePercent() float64 {
	return h.Confidence * 100
}

// ScoredPassage is a passage with its relevance score.
// Scored is false when scoring failed and Score fell back to 0.
type ScoredPassage struct {
	Text   string
	Score  float64
	Scored bool
}

// DocumentSummary is a display-ready document that cleared both thresholds.
type DocumentSummary struct {
	DocumentID        string
	Author            string
	Title             string
	ConfidencePercent float64
	TopRelevance      float64
	Passages          []string
}

// IngestReceipt is the search service acknowledgement of an uploaded document.
type IngestReceipt struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}
