package estatedash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/db"
	dbRedis "github.com/kailas-cloud/estatedash/internal/db/redis"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
	documentrepo "github.com/kailas-cloud/estatedash/internal/repository/document"
	"github.com/kailas-cloud/estatedash/internal/repository/fetchcache"
	accountuc "github.com/kailas-cloud/estatedash/internal/usecase/account"
	dashboarduc "github.com/kailas-cloud/estatedash/internal/usecase/dashboard"
	fetchuc "github.com/kailas-cloud/estatedash/internal/usecase/fetch"
	"github.com/kailas-cloud/estatedash/internal/usecase/session"
	shortlistuc "github.com/kailas-cloud/estatedash/internal/usecase/shortlist"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "estatedash:"
	defaultMaxSessions      = 16
)

// Public names for the core types.
type (
	// Query selects the mode, order and filters of a dashboard view.
	Query = dashboarduc.Query
	// View is one rendered dashboard state.
	View = dashboarduc.View
	// Listing is a shortlist entry merged with its property and extraction.
	Listing = listing.Listing
	// Detail is the property page view.
	Detail = listing.Detail
	// Submission is a user's latest preference intake.
	Submission = submission.Submission
	// CacheStats is a fetch cache snapshot.
	CacheStats = fetchcache.Stats
)

// Client is the estatedash entry point.
type Client struct {
	store     db.Store
	reader    *fetchcache.Reader
	shortlist *shortlistuc.Service
	accounts  *accountuc.Service
	dashboard *dashboarduc.Service
	sessions  *session.Manager
}

// New creates a Client and connects to the document store.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("estatedash: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("estatedash: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("estatedash: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.keyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	docRepo := documentrepo.New(store, prefix).WithLogger(logger)
	reader := fetchcache.NewReader(docRepo, cfg.cacheCapacity, cfg.cacheTTL, nil)
	fetcher := fetchuc.New(reader, docRepo, logger).
		WithExtractionCache(fetchuc.NewExtractionCache(cfg.cacheCapacity, cfg.cacheTTL, nil))
	if cfg.workers > 0 {
		fetcher = fetcher.WithWorkers(cfg.workers)
	}
	if cfg.fetchTimeout > 0 {
		fetcher = fetcher.WithTimeout(cfg.fetchTimeout)
	}

	shortlistSvc := shortlistuc.New(docRepo, fetcher, logger)
	accountSvc := accountuc.New(docRepo, logger)

	return &Client{
		store:     store,
		reader:    reader,
		shortlist: shortlistSvc,
		accounts:  accountSvc,
		dashboard: dashboarduc.New(shortlistSvc, accountSvc, logger),
		sessions: session.NewManager(defaultMaxSessions, session.DefaultTTL).
			WithImageCapacity(cfg.imageCapacity).
			WithLogger(logger),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Shortlist returns the user's enriched shortlist, newest first.
func (c *Client) Shortlist(ctx context.Context, userID string) ([]Listing, error) {
	return c.shortlist.List(ctx, userID)
}

// CacheStats returns fetch cache counters per collection.
func (c *Client) CacheStats() map[string]CacheStats {
	out := make(map[string]CacheStats)
	for col, st := range c.reader.Stats() {
		out[string(col)] = st
	}
	return out
}

// Login authenticates a user and opens a Session with empty caches.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := c.accounts.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &Session{sess: c.sessions.Create(u.ID, u.FirstName), client: c}, nil
}

// Session is one logged-in user's dashboard.
type Session struct {
	sess   *session.Session
	client *Client
}

// UserID returns the logged-in user's id.
func (s *Session) UserID() string { return s.sess.UserID }

// FirstName returns the logged-in user's first name.
func (s *Session) FirstName() string { return s.sess.FirstName }

// Listings renders the dashboard for q.
func (s *Session) Listings(ctx context.Context, q Query) (View, error) {
	return s.client.dashboard.View(ctx, s.sess, q)
}

// Property returns the detail view of one property.
func (s *Session) Property(ctx context.Context, propertyID string) (Detail, error) {
	return s.client.dashboard.Property(ctx, s.sess, propertyID)
}

// Image returns the decoded image at index for a property.
func (s *Session) Image(ctx context.Context, propertyID string, index int) ([]byte, error) {
	return s.client.dashboard.Image(ctx, s.sess, propertyID, index)
}

// Preferences returns the user's latest submission, or nil.
func (s *Session) Preferences(ctx context.Context) (*Submission, error) {
	return s.client.dashboard.Preferences(ctx, s.sess)
}

// Refresh drops the session's cached listings and images.
func (s *Session) Refresh() {
	s.client.dashboard.Refresh(s.sess)
}

// Close ends the session.
func (s *Session) Close() {
	s.client.sessions.Delete(s.sess.ID)
}
