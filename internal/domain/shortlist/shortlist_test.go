package shortlist

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

func TestFromRecord(t *testing.T) {
	r := domain.Record{
		"id":            "s1",
		"user_id":       "u1",
		"submission_id": "sub1",
		"created_at":    "2024-05-01T09:00:00Z",
		"properties": []any{
			map[string]any{"property_id": "p1", "score": 0.9},
			"p2",
			map[string]any{"score": 0.1},
			"",
		},
	}

	s, err := FromRecord(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "s1" || s.UserID != "u1" || s.SubmissionID != "sub1" {
		t.Errorf("unexpected header: %+v", s)
	}
	if len(s.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(s.Entries))
	}
	if s.Entries[0].Fields["score"] != 0.9 {
		t.Errorf("entry fields lost: %v", s.Entries[0].Fields)
	}
	if s.Entries[1].PropertyID != "p2" {
		t.Errorf("string entry = %+v", s.Entries[1])
	}
	if !s.CreatedAt.Equal(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", s.CreatedAt)
	}
}

func TestFromRecord_Invalid(t *testing.T) {
	tests := []struct {
		name string
		r    domain.Record
	}{
		{"no user", domain.Record{"properties": []any{"p1"}}},
		{"properties not a list", domain.Record{"user_id": "u1", "properties": "p1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromRecord(tc.r); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSortByRecencyAndDedupe(t *testing.T) {
	older := Shortlist{ID: "old", CreatedAt: time.Unix(100, 0), Entries: []Entry{{PropertyID: "p1"}, {PropertyID: "p2"}}}
	newer := Shortlist{ID: "new", CreatedAt: time.Unix(200, 0), Entries: []Entry{{PropertyID: "p2"}, {PropertyID: "p3"}}}

	lists := []Shortlist{older, newer}
	SortByRecency(lists)
	if lists[0].ID != "new" {
		t.Fatalf("expected newest first, got %s", lists[0].ID)
	}

	entries := Dedupe(lists)
	got := PropertyIDs(entries)
	want := []string{"p2", "p3", "p1"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
