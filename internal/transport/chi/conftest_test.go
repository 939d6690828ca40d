package chi

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/query"
	askuc "github.com/kailas-cloud/docqa/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/docqa/internal/usecase/health"
)

type mockAsker struct {
	result  askuc.Result
	err     error
	calls   int
	lastReq query.Request
}

func (m *mockAsker) Ask(_ context.Context, req query.Request) (askuc.Result, error) {
	m.calls++
	m.lastReq = req
	return m.result, m.err
}

type mockUploader struct {
	receipt  domain.IngestReceipt
	err      error
	calls    int
	filename string
	body     string
}

func (m *mockUploader) Upload(_ context.Context, filename string, r io.Reader) (domain.IngestReceipt, error) {
	m.calls++
	m.filename = filename
	data, _ := io.ReadAll(r)
	m.body = string(data)
	return m.receipt, m.err
}

type mockHistory struct {
	records   []domain.QueryRecord
	lastLimit int
}

func (m *mockHistory) Last(n int) []domain.QueryRecord {
	m.lastLimit = n
	return m.records
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type testDeps struct {
	asker    *mockAsker
	uploader *mockUploader
	history  *mockHistory
	health   *mockHealth
}

func newTestDeps() *testDeps {
	return &testDeps{
		asker:    &mockAsker{},
		uploader: &mockUploader{},
		history:  &mockHistory{},
		health:   &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
}

func newTestRouter(t *testing.T, d *testDeps, opts Options) http.Handler {
	t.Helper()
	s := NewServer(d.asker, d.uploader, d.history, d.health, opts, nil)
	r := chi.NewRouter()
	s.Register(r)
	return r
}
