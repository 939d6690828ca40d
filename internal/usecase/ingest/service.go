package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/upload"
	"github.com/kailas-cloud/docqa/internal/logger"
)

// Service validates uploads and forwards them to the document collection.
type Service struct {
	sink   DocumentSink
	logger *zap.Logger
}

// New creates an ingest service.
func New(sink DocumentSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sink: sink, logger: logger}
}

// Upload checks the extension allow-list and submits the file.
// Validation failures wrap domain.ErrInvalidFile, submission failures domain.ErrIngestion.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (domain.IngestReceipt, error) {
	name := baseName(filename)
	if err := upload.Validate(name); err != nil {
		return domain.IngestReceipt{}, err
	}

	receipt, err := s.sink.AddDocument(ctx, name, r)
	if err != nil {
		return domain.IngestReceipt{}, fmt.Errorf("add document %s: %w", name, err)
	}

	logger.FromContext(ctx, s.logger).Info("document uploaded",
		zap.String("filename", name),
		zap.String("document_id", receipt.DocumentID),
	)
	return receipt, nil
}

// baseName drops any client-supplied directories from filename.
func baseName(filename string) string {
	if filename == "" {
		return ""
	}
	return filepath.Base(filepath.Clean("/" + filename))
}
