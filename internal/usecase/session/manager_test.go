package session

import (
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
)

func TestManager_CreateGetDelete(t *testing.T) {
	m := NewManager(10, time.Hour).WithIDGenerator(func() string { return "sess-1" })

	s := m.Create("u1", "Ada")
	if s.ID != "sess-1" || s.UserID != "u1" || s.FirstName != "Ada" {
		t.Fatalf("unexpected session: %+v", s)
	}

	got, err := m.Get("sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Error("expected the same session")
	}

	s.Images.EnsureDecoded("p1", []string{encode("img")})
	m.Delete("sess-1")

	if _, err := m.Get("sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if s.Images.Len() != 0 {
		t.Error("deleting a session must clear its images")
	}
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(0, 0)
	for _, id := range []string{"", "nope"} {
		if _, err := m.Get(id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("Get(%q) err = %v", id, err)
		}
	}
}

func TestManager_Bounded(t *testing.T) {
	n := 0
	m := NewManager(2, time.Hour).WithIDGenerator(func() string {
		n++
		return string(rune('a' + n))
	})

	first := m.Create("u1", "")
	m.Create("u2", "")
	m.Create("u3", "")

	if m.Len() != 2 {
		t.Errorf("len = %d", m.Len())
	}
	if _, err := m.Get(first.ID); err == nil {
		t.Error("oldest session should be evicted")
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(10, time.Hour)
	a := m.Create("u1", "")
	b := m.Create("u2", "")

	a.Images.EnsureDecoded("p1", []string{encode("x")})
	if b.Images.Contains("p1") {
		t.Error("image caches must not be shared between sessions")
	}
	if a.ID == b.ID {
		t.Error("session ids must be unique")
	}
}

func TestManager_ImageOptions(t *testing.T) {
	dec := &countingDecoder{}
	m := NewManager(10, time.Hour).WithImageCapacity(1).WithImageDecoder(dec.Decode)
	s := m.Create("u1", "")

	s.Images.EnsureDecoded("a", []string{"x"})
	s.Images.EnsureDecoded("b", []string{"x"})

	if dec.calls != 2 || s.Images.Len() != 1 {
		t.Errorf("calls=%d len=%d", dec.calls, s.Images.Len())
	}
}

func TestSession_CachedState(t *testing.T) {
	s := NewManager(10, time.Hour).Create("u1", "")

	if _, ok := s.Listings(); ok {
		t.Error("listings should start unloaded")
	}
	s.SetListings([]listing.Listing{listing.New(domain.Record{"property_id": "p1"})})
	if ls, ok := s.Listings(); !ok || len(ls) != 1 {
		t.Errorf("listings = %v %v", ls, ok)
	}

	s.SetSubmission(nil)
	if sub, ok := s.Submission(); !ok || sub != nil {
		t.Error("absent submission should be remembered")
	}
	s.SetSubmission(&submission.Submission{ID: "sub1"})

	s.Clear()
	if _, ok := s.Listings(); ok {
		t.Error("clear should drop listings")
	}
	if _, ok := s.Submission(); ok {
		t.Error("clear should drop the submission")
	}
}
