// Package shortlist models a batch of property recommendations for one user.
package shortlist

import (
	"slices"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// Stored field names.
const (
	FieldUserID       = "user_id"
	FieldSubmissionID = "submission_id"
	FieldProperties   = "properties"
	FieldPropertyID   = "property_id"
)

// Entry is one recommended property. Fields holds every attribute the
// shortlist stored alongside the id; they are the base of the merged listing.
type Entry struct {
	PropertyID string
	Fields     domain.Record
}

// Shortlist is one recommendation batch.
type Shortlist struct {
	ID           string
	UserID       string
	SubmissionID string
	Entries      []Entry
	CreatedAt    time.Time
}

// FromRecord parses a stored shortlist. Entries without a property id are
// dropped; a record without a user id or entry list is invalid.
func FromRecord(r domain.Record) (Shortlist, error) {
	userID := r.String(FieldUserID)
	if userID == "" {
		return Shortlist{}, domain.NewValidationError(FieldUserID, "is required")
	}

	items, ok := r[FieldProperties].([]any)
	if !ok && r.Has(FieldProperties) {
		return Shortlist{}, domain.NewValidationError(FieldProperties, "must be a list")
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				entries = append(entries, Entry{PropertyID: v, Fields: domain.Record{FieldPropertyID: v}})
			}
		case map[string]any:
			fields := domain.Record(v).Clone()
			if id := fields.String(FieldPropertyID); id != "" {
				entries = append(entries, Entry{PropertyID: id, Fields: fields})
			}
		}
	}

	createdAt, _ := r.Time(domain.FieldCreatedAt)

	return Shortlist{
		ID:           r.ID(),
		UserID:       userID,
		SubmissionID: r.String(FieldSubmissionID),
		Entries:      entries,
		CreatedAt:    createdAt,
	}, nil
}

// SortByRecency orders shortlists newest first. Ties keep their input order.
func SortByRecency(lists []Shortlist) {
	slices.SortStableFunc(lists, func(a, b Shortlist) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// Dedupe walks lists in order and keeps only the first occurrence of each
// property id. The result preserves entry order within each shortlist.
func Dedupe(lists []Shortlist) []Entry {
	seen := make(map[string]struct{})
	var out []Entry
	for _, l := range lists {
		for _, e := range l.Entries {
			if _, dup := seen[e.PropertyID]; dup {
				continue
			}
			seen[e.PropertyID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// PropertyIDs returns the ids of entries in order.
func PropertyIDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.PropertyID
	}
	return ids
}
