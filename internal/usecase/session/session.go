// Package session keeps the per-login state of a dashboard user: decoded
// images, the loaded shortlist and the latest preference submission.
package session

import (
	"sync"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
)

// Session is the explicit context of one logged-in user.
type Session struct {
	ID        string
	UserID    string
	FirstName string
	Images    *ImageCache
	CreatedAt time.Time

	mu            sync.Mutex
	listings      []listing.Listing
	listingsSet   bool
	submission    *submission.Submission
	submissionSet bool
}

// Listings returns the cached shortlist, if loaded.
func (s *Session) Listings() ([]listing.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings, s.listingsSet
}

// SetListings caches the loaded shortlist.
func (s *Session) SetListings(ls []listing.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = ls
	s.listingsSet = true
}

// Submission returns the cached latest submission. A loaded-but-absent
// submission is reported as (nil, true).
func (s *Session) Submission() (*submission.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission, s.submissionSet
}

// SetSubmission caches the latest submission; nil records that there is none.
func (s *Session) SetSubmission(sub *submission.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submission = sub
	s.submissionSet = true
}

// Clear drops the cached shortlist, submission and decoded images.
func (s *Session) Clear() {
	s.mu.Lock()
	s.listings = nil
	s.listingsSet = false
	s.submission = nil
	s.submissionSet = false
	s.mu.Unlock()

	s.Images.Clear()
}
