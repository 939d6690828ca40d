package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/filter"
	"github.com/kailas-cloud/docqa/internal/domain/query"
	"github.com/kailas-cloud/docqa/internal/usecase/history"
)

// --- Mocks ---

type mockRetriever struct {
	hits      []domain.SearchHit
	err       error
	lastQuery string
	lastDates filter.DateRange
}

func (m *mockRetriever) Query(_ context.Context, q string, dates filter.DateRange) ([]domain.SearchHit, error) {
	m.lastQuery = q
	m.lastDates = dates
	return m.hits, m.err
}

type mockFilter struct {
	out        []domain.SearchHit
	docs       []domain.DocumentSummary
	calls      int
	confidence float64
	relevance  float64
}

func (m *mockFilter) Run(
	_ context.Context, hits []domain.SearchHit, _ string, confidence, relevance float64,
) []domain.DocumentSummary {
	m.calls++
	m.out = hits
	m.confidence = confidence
	m.relevance = relevance
	return m.docs
}

type mockSynthesizer struct {
	answer string
	calls  int
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string, _ []domain.DocumentSummary) string {
	m.calls++
	return m.answer
}

func mustRequest(t *testing.T, text string, conf, rel float64) query.Request {
	t.Helper()
	req, err := query.New(text, "2024-01-01", "2024-06-30", conf, rel)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return req
}

// --- Tests ---

func TestAsk_Answered(t *testing.T) {
	ret := &mockRetriever{hits: []domain.SearchHit{{DocumentID: "d1"}}}
	flt := &mockFilter{docs: []domain.DocumentSummary{{DocumentID: "d1"}}}
	syn := &mockSynthesizer{answer: "OVERVIEW\n\nfine"}
	log := history.New()

	res, err := New(ret, flt, syn, log, nil).Ask(context.Background(), mustRequest(t, "climate policy", 50, 0.5))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if ret.lastQuery != "climate policy" || ret.lastDates.Start != "2024-01-01" || ret.lastDates.End != "2024-06-30" {
		t.Errorf("retriever got %q %+v", ret.lastQuery, ret.lastDates)
	}
	if flt.confidence != 50 || flt.relevance != 0.5 {
		t.Errorf("filter thresholds = %v/%v", flt.confidence, flt.relevance)
	}
	if res.Answer != "OVERVIEW\n\nfine" || syn.calls != 1 {
		t.Errorf("answer = %q, synth calls = %d", res.Answer, syn.calls)
	}
	if len(res.Documents) != 1 {
		t.Errorf("documents = %+v", res.Documents)
	}
	if len(res.History) != 1 || res.History[0].Query != "climate policy" || res.History[0].Answer != res.Answer {
		t.Errorf("history = %+v", res.History)
	}
	if res.History[0].ID == "" || res.History[0].CreatedAt.IsZero() {
		t.Errorf("record not stamped: %+v", res.History[0])
	}
}

func TestAsk_NoSurvivorsSkipsSynthesis(t *testing.T) {
	ret := &mockRetriever{hits: []domain.SearchHit{{DocumentID: "d1"}}}
	flt := &mockFilter{}
	syn := &mockSynthesizer{answer: "should not be used"}
	log := history.New()

	res, err := New(ret, flt, syn, log, nil).Ask(context.Background(), mustRequest(t, "q", 95, 0))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if res.Answer != "" {
		t.Errorf("answer = %q, want empty", res.Answer)
	}
	if syn.calls != 0 {
		t.Errorf("synthesizer called %d times", syn.calls)
	}
	if log.Len() != 1 {
		t.Errorf("empty answers are still recorded, history len = %d", log.Len())
	}
}

func TestAsk_RetrievalError(t *testing.T) {
	ret := &mockRetriever{err: errors.Join(domain.ErrRetrieval, errors.New("503"))}
	flt := &mockFilter{}
	log := history.New()

	_, err := New(ret, flt, &mockSynthesizer{}, log, nil).Ask(context.Background(), mustRequest(t, "q", 0, 0))
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
	if flt.calls != 0 {
		t.Error("filter must not run after a retrieval failure")
	}
	if log.Len() != 0 {
		t.Error("failed queries must not be recorded")
	}
}

func TestAsk_HistoryAccumulates(t *testing.T) {
	svc := New(&mockRetriever{}, &mockFilter{}, &mockSynthesizer{}, history.New(), nil)

	for _, q := range []string{"first", "second", "third"} {
		if _, err := svc.Ask(context.Background(), mustRequest(t, q, 0, 0)); err != nil {
			t.Fatalf("Ask(%q): %v", q, err)
		}
	}
	res, err := svc.Ask(context.Background(), mustRequest(t, "fourth", 0, 0))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(res.History) != 4 || res.History[0].Query != "first" || res.History[3].Query != "fourth" {
		t.Errorf("history = %+v", res.History)
	}
}
