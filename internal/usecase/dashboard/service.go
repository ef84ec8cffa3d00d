// Package dashboard serves the read side of the property dashboard: the
// filtered and sorted listing grid, property detail and images.
package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/geo"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/listing/filter"
	"github.com/kailas-cloud/estatedash/internal/domain/listing/order"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
	"github.com/kailas-cloud/estatedash/internal/usecase/session"
)

// Guidance messages.
const (
	MessageNoListings  = "No recommended properties are available right now. Please try refreshing later."
	messageEmptyMode   = "No %s properties are available yet. Adjust filters or refresh."
	MessageNoMatches   = "No properties match the current filters. Try adjusting your filters."
	noticeWithinRadius = "Showing %d properties within %gkm of %s"
)

// Query selects the mode, order and filters of a dashboard view. Zero values
// use the defaults. Clear switches off filters that would otherwise default
// from the user's preferences.
type Query struct {
	Mode    listing.Mode
	Sort    order.Order
	Filters filter.Criteria
	Clear   []filter.Field
}

// View is one rendered dashboard state.
type View struct {
	Mode              listing.Mode    `json:"mode"`
	Sort              order.Order     `json:"sort"`
	SortLabel         string          `json:"sort_label"`
	SortOptions       []order.Option  `json:"sort_options"`
	Filters           filter.Criteria `json:"filters"`
	FurnishTypes      []string        `json:"furnish_types,omitempty"`
	PreferredLocation string          `json:"preferred_location"`
	Total             int             `json:"total"`
	Count             int             `json:"count"`
	Listings          []listing.Card  `json:"listings"`
	Message           string          `json:"message,omitempty"`
	Notice            string          `json:"notice,omitempty"`
}

// Service builds dashboard views for a session.
type Service struct {
	agg    Aggregator
	prefs  Preferences
	logger *zap.Logger
}

// New creates a dashboard service.
func New(agg Aggregator, prefs Preferences, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{agg: agg, prefs: prefs, logger: logger}
}

// View loads (or reuses) the session's shortlist and renders it for q.
func (s *Service) View(ctx context.Context, sess *session.Session, q Query) (View, error) {
	sub := s.submission(ctx, sess)

	listings, err := s.listings(ctx, sess, sub)
	if err != nil {
		return View{}, err
	}

	sortOrder := q.Sort
	if sortOrder == "" {
		sortOrder = order.Default
	}

	v := View{
		Sort:              sortOrder,
		PreferredLocation: preferredLabel(sub),
		Listings:          []listing.Card{},
	}
	if len(listings) == 0 {
		v.Message = MessageNoListings
		v.SortOptions = order.Options("")
		v.SortLabel = sortOrder.Label("")
		return v, nil
	}

	mode := q.Mode
	if mode == "" {
		mode = listing.DetermineMode(listings)
	}
	v.Mode = mode
	v.SortLabel = sortOrder.Label(mode)
	v.SortOptions = order.Options(mode)

	inMode := listing.ByMode(listings, mode)
	v.Total = len(inMode)
	if len(inMode) == 0 {
		v.Message = fmt.Sprintf(messageEmptyMode, mode)
		return v, nil
	}
	if mode == listing.ModeRental {
		v.FurnishTypes = filter.FurnishOptions(inMode)
	}

	criteria := Defaults(sub).Without(q.Clear...).Overlay(q.Filters)
	v.Filters = criteria

	filtered := criteria.Apply(inMode, mode)
	v.Count = len(filtered)
	if criteria.WithinKm != nil {
		v.Notice = fmt.Sprintf(noticeWithinRadius, len(filtered), *criteria.WithinKm, v.PreferredLocation)
	}
	if len(filtered) == 0 {
		v.Message = MessageNoMatches
		return v, nil
	}

	for _, l := range order.Sort(filtered, sortOrder, mode) {
		v.Listings = append(v.Listings, l.Card(mode))
	}
	return v, nil
}

// Refresh drops every cache of the session so the next view reloads from
// the store.
func (s *Service) Refresh(sess *session.Session) {
	sess.Clear()
}

// Property returns the detail view of one property, preferring the
// session's loaded shortlist.
func (s *Service) Property(ctx context.Context, sess *session.Session, propertyID string) (listing.Detail, error) {
	l, err := s.find(ctx, sess, propertyID)
	if err != nil {
		return listing.Detail{}, err
	}
	return l.Detail(), nil
}

// Listing returns the enriched listing of one property, preferring the
// session's loaded shortlist.
func (s *Service) Listing(ctx context.Context, sess *session.Session, propertyID string) (listing.Listing, error) {
	return s.find(ctx, sess, propertyID)
}

// Image returns decoded image index of a property, decoding its images into
// the session cache on first access.
func (s *Service) Image(ctx context.Context, sess *session.Session, propertyID string, index int) ([]byte, error) {
	if !sess.Images.Contains(propertyID) {
		l, err := s.find(ctx, sess, propertyID)
		if err != nil {
			return nil, err
		}
		sess.Images.EnsureDecoded(propertyID, l.Images())
	}
	b, ok := sess.Images.Decoded(propertyID, index)
	if !ok {
		return nil, fmt.Errorf("image %d of %s: %w", index, propertyID, domain.ErrNotFound)
	}
	return b, nil
}

// Preferences returns the session's latest submission, loading it once.
func (s *Service) Preferences(ctx context.Context, sess *session.Session) (*submission.Submission, error) {
	if sub, ok := sess.Submission(); ok {
		return sub, nil
	}
	sub, err := s.prefs.LatestSubmission(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	sess.SetSubmission(sub)
	return sub, nil
}

// Defaults derives the initial filters from the user's preferences.
func Defaults(sub *submission.Submission) filter.Criteria {
	if sub == nil {
		return filter.Criteria{}
	}
	c := sub.Content
	return filter.Criteria{
		MinLeaseYears:     c.MinLeaseYears,
		MaxServiceCharge:  c.MaxServiceCharge,
		MaxDeposit:        c.MaxDeposit,
		MaxCommuteMinutes: c.MaxCommuteMinutes,
	}
}

func (s *Service) find(ctx context.Context, sess *session.Session, propertyID string) (listing.Listing, error) {
	if ls, ok := sess.Listings(); ok {
		for _, l := range ls {
			if l.PropertyID() == propertyID {
				return l, nil
			}
		}
	}
	l, err := s.agg.Get(ctx, propertyID)
	if err != nil {
		return listing.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return withDistance(l, s.submission(ctx, sess)), nil
}

func (s *Service) listings(ctx context.Context, sess *session.Session, sub *submission.Submission) ([]listing.Listing, error) {
	if ls, ok := sess.Listings(); ok {
		return ls, nil
	}
	ls, err := s.agg.List(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("load shortlist: %w", err)
	}
	for i := range ls {
		ls[i] = withDistance(ls[i], sub)
	}
	sess.SetListings(ls)
	return ls, nil
}

// submission loads preferences, treating a failure as "no preferences" so
// the grid still renders.
func (s *Service) submission(ctx context.Context, sess *session.Session) *submission.Submission {
	sub, err := s.Preferences(ctx, sess)
	if err != nil {
		s.logger.Warn("preferences unavailable", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil
	}
	return sub
}

// withDistance fills a missing preferred-location distance from coordinates.
func withDistance(l listing.Listing, sub *submission.Submission) listing.Listing {
	if _, ok := l.DistanceKm(); ok || sub == nil || sub.Content.PreferredPoint == nil {
		return l
	}
	p, ok := l.Point()
	if !ok {
		return l
	}
	return l.WithDistance(geo.DistanceKm(*sub.Content.PreferredPoint, p))
}

func preferredLabel(sub *submission.Submission) string {
	if sub == nil {
		return submission.DefaultLocationLabel
	}
	return sub.Content.PreferredLocationLabel()
}
