package chi

import (
	"context"
	"io"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/query"
	askuc "github.com/kailas-cloud/docqa/internal/usecase/ask"
	healthuc "github.com/kailas-cloud/docqa/internal/usecase/health"
)

// Asker answers validated queries.
type Asker interface {
	Ask(ctx context.Context, req query.Request) (askuc.Result, error)
}

// Uploader ingests documents.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (domain.IngestReceipt, error)
}

// HistoryReader lists recorded queries.
type HistoryReader interface {
	Last(n int) []domain.QueryRecord
}

// HealthReporter aggregates dependency checks.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
