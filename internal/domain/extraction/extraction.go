// Package extraction models AI-derived annotations for a property.
package extraction

import (
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// Stored field names.
const (
	FieldPropertyID = "property_id"
	FieldResults    = "results"
)

// Extraction is one annotation run for a property.
type Extraction struct {
	ID         string
	PropertyID string
	Results    domain.Record
	CreatedAt  time.Time
}

// FromRecord parses a stored extraction.
func FromRecord(r domain.Record) (Extraction, error) {
	propertyID := r.String(FieldPropertyID)
	if propertyID == "" {
		return Extraction{}, domain.NewValidationError(FieldPropertyID, "is required")
	}
	results := r.Map(FieldResults)
	if results == nil {
		return Extraction{}, domain.NewValidationError(FieldResults, "must be an object")
	}
	createdAt, _ := r.Time(domain.FieldCreatedAt)
	return Extraction{
		ID:         r.ID(),
		PropertyID: propertyID,
		Results:    results,
		CreatedAt:  createdAt,
	}, nil
}

// Latest returns the most recently created extraction. Earlier entries win ties.
func Latest(items []Extraction) (Extraction, bool) {
	if len(items) == 0 {
		return Extraction{}, false
	}
	best := items[0]
	for _, e := range items[1:] {
		if e.CreatedAt.After(best.CreatedAt) {
			best = e
		}
	}
	return best, true
}
