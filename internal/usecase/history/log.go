package history

import (
	"sync"

	"github.com/kailas-cloud/docqa/internal/domain"
)

// Log is the process-lifetime, append-only record of answered queries.
// The zero value is ready to use.
type Log struct {
	mu      sync.Mutex
	records []domain.QueryRecord
}

// New creates an empty Log.
func New() *Log {
	return &Log{}
}

// Append adds a record at the end of the log.
func (l *Log) Append(rec domain.QueryRecord) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

// Snapshot returns a copy of every record in insertion order.
func (l *Log) Snapshot() []domain.QueryRecord {
	return l.Last(0)
}

// Last returns a copy of the n most recent records in insertion order.
// n <= 0 returns the full log.
func (l *Log) Last(n int) []domain.QueryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if n > 0 && n < len(l.records) {
		start = len(l.records) - n
	}
	out := make([]domain.QueryRecord, len(l.records)-start)
	copy(out, l.records[start:])
	return out
}

// Len reports the number of records.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
