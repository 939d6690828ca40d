package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueryRecord is one processed query and its answer. Immutable once appended to history.
type QueryRecord struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// NewQueryRecord stamps a record with a fresh ID and the current time.
func NewQueryRecord(query, answer string) QueryRecord {
	return QueryRecord{
		ID:        uuid.NewString(),
		Query:     query,
		Answer:    answer,
		CreatedAt: time.Now().UTC(),
	}
}
