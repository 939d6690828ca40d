package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kailas-cloud/docqa/internal/domain"
)

type mockSink struct {
	receipt  domain.IngestReceipt
	err      error
	calls    int
	filename string
	body     string
}

func (m *mockSink) AddDocument(_ context.Context, filename string, r io.Reader) (domain.IngestReceipt, error) {
	m.calls++
	m.filename = filename
	data, _ := io.ReadAll(r)
	m.body = string(data)
	return m.receipt, m.err
}

func TestUpload_OK(t *testing.T) {
	sink := &mockSink{receipt: domain.IngestReceipt{DocumentID: "doc-9", Status: "processing"}}
	svc := New(sink, nil)

	receipt, err := svc.Upload(context.Background(), "Report.PDF", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if receipt.DocumentID != "doc-9" {
		t.Errorf("receipt = %+v", receipt)
	}
	if sink.filename != "Report.PDF" || sink.body != "data" {
		t.Errorf("sink got %q %q", sink.filename, sink.body)
	}
}

func TestUpload_StripsDirectories(t *testing.T) {
	sink := &mockSink{}
	if _, err := New(sink, nil).Upload(context.Background(), "../../etc/notes.txt", strings.NewReader("")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if sink.filename != "notes.txt" {
		t.Errorf("filename = %q, want notes.txt", sink.filename)
	}
}

func TestUpload_InvalidFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"empty", ""},
		{"no extension", "README"},
		{"disallowed", "script.exe"},
		{"trailing dot", "report."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &mockSink{}
			_, err := New(sink, nil).Upload(context.Background(), tt.filename, strings.NewReader("x"))
			if !errors.Is(err, domain.ErrInvalidFile) {
				t.Fatalf("expected ErrInvalidFile, got %v", err)
			}
			if sink.calls != 0 {
				t.Error("sink must not be called for invalid files")
			}
		})
	}
}

func TestUpload_SinkError(t *testing.T) {
	sink := &mockSink{err: errors.Join(domain.ErrIngestion, errors.New("400 unsupported"))}
	_, err := New(sink, nil).Upload(context.Background(), "a.docx", strings.NewReader("x"))
	if !errors.Is(err, domain.ErrIngestion) {
		t.Fatalf("expected ErrIngestion, got %v", err)
	}
}
