package ingest

import (
	"context"
	"io"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// DocumentSink accepts documents into the search collection.
type DocumentSink interface {
	AddDocument(ctx context.Context, filename string, r io.Reader) (domain.IngestReceipt, error)
}
