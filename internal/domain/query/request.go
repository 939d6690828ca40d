// Package query validates user-supplied query parameters.
package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/domain/filter"
)

// Threshold bounds.
const (
	MaxConfidenceThreshold = 100
	MaxRelevanceThreshold  = 1
)

// Request is a validated query with its filters.
type Request struct {
	text       string
	dates      filter.DateRange
	confidence float64
	relevance  float64
}

// New validates query parameters.
// Dates are compared as plain strings, so callers must use a sortable format such as ISO-8601.
func New(text, startDate, endDate string, confidence, relevance float64) (Request, error) {
	if strings.TrimSpace(text) == "" {
		return Request{}, domain.ErrMissingQuery
	}
	if err := ValidateThresholds(confidence, relevance); err != nil {
		return Request{}, err
	}
	if err := ValidateDates(startDate, endDate); err != nil {
		return Request{}, err
	}
	return Request{
		text:       text,
		dates:      filter.DateRange{Start: startDate, End: endDate},
		confidence: confidence,
		relevance:  relevance,
	}, nil
}

// ValidateThresholds checks confidence against [0,100] and relevance against [0,1].
func ValidateThresholds(confidence, relevance float64) error {
	if !inRange(confidence, MaxConfidenceThreshold) {
		return domain.NewParameterError(
			fmt.Sprintf("Confidence threshold must be between 0 and %d.", MaxConfidenceThreshold))
	}
	if !inRange(relevance, MaxRelevanceThreshold) {
		return domain.NewParameterError(
			fmt.Sprintf("Relevance threshold must be between 0 and %d.", MaxRelevanceThreshold))
	}
	return nil
}

// ValidateDates rejects a start date that sorts after the end date.
func ValidateDates(startDate, endDate string) error {
	if startDate != "" && endDate != "" && startDate > endDate {
		return domain.NewParameterError("Start date cannot be after end date.")
	}
	return nil
}

func inRange(v, upper float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= upper
}

// Text returns the query string.
func (r Request) Text() string { return r.text }

// Dates returns the date range filter.
func (r Request) Dates() filter.DateRange { return r.dates }

// ConfidenceThreshold returns the confidence threshold on the 0-100 scale.
func (r Request) ConfidenceThreshold() float64 { return r.confidence }

// RelevanceThreshold returns the relevance threshold on the 0-1 scale.
func (r Request) RelevanceThreshold() float64 { return r.relevance }
