package relevance

import "context"

// Categorizer returns the confidence of the top topical category for text.
type Categorizer interface {
	TopCategoryScore(ctx context.Context, text string) (float64, error)
}
