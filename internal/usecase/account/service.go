// Package account handles login, registration and preference lookup.
package account

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
	"github.com/kailas-cloud/estatedash/internal/domain/user"
)

// Service manages user accounts.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an account service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Login returns the user registered under email if password matches.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, error) {
	u, found, err := s.findByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, fmt.Errorf("login %s: %w", user.NormalizeEmail(email), domain.ErrUserNotFound)
	}
	if !u.CheckPassword(password) {
		return user.User{}, fmt.Errorf("login %s: %w", u.Email, domain.ErrInvalidCredentials)
	}
	return u, nil
}

// Register creates a new account. An email that is already registered is
// rejected.
func (s *Service) Register(ctx context.Context, email, firstName, password string) (user.User, error) {
	u, err := user.New(email, firstName, password)
	if err != nil {
		return user.User{}, fmt.Errorf("register: %w", err)
	}

	_, exists, err := s.findByEmail(ctx, u.Email)
	if err != nil {
		return user.User{}, err
	}
	if exists {
		return user.User{}, fmt.Errorf("register: %w",
			domain.NewValidationError(user.FieldEmail, "is already registered"))
	}

	id, err := s.repo.Insert(ctx, domain.CollectionUsers, u.Record())
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	s.logger.Info("user registered", zap.String("user_id", id))
	return u, nil
}

// LatestSubmission returns the user's most recent preference submission, or
// nil when there is none. Malformed submissions are skipped.
func (s *Service) LatestSubmission(ctx context.Context, userID string) (*submission.Submission, error) {
	recs, err := s.repo.QueryByField(ctx, domain.CollectionSubmissions, submission.FieldUserID, userID)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	items := make([]submission.Submission, 0, len(recs))
	for _, r := range recs {
		sub, err := submission.FromRecord(r)
		if err != nil {
			s.logger.Warn("skipping invalid submission",
				zap.String("id", r.ID()),
				zap.String("user_id", userID),
				zap.Error(err))
			continue
		}
		items = append(items, sub)
	}

	latest, ok := submission.Latest(items)
	if !ok {
		return nil, nil
	}
	return &latest, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (user.User, bool, error) {
	email = user.NormalizeEmail(email)
	if email == "" {
		return user.User{}, false, nil
	}

	recs, err := s.repo.QueryByField(ctx, domain.CollectionUsers, user.FieldEmail, email)
	if err != nil {
		return user.User{}, false, fmt.Errorf("query users: %w", err)
	}
	for _, r := range recs {
		u, err := user.FromRecord(r)
		if err != nil {
			s.logger.Warn("skipping invalid user", zap.String("id", r.ID()), zap.Error(err))
			continue
		}
		return u, true, nil
	}
	return user.User{}, false, nil
}
