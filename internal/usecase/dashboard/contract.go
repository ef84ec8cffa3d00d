package dashboard

import (
	"context"

	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
)

// Aggregator loads enriched listings.
type Aggregator interface {
	List(ctx context.Context, userID string) ([]listing.Listing, error)
	Get(ctx context.Context, propertyID string) (listing.Listing, error)
}

// Preferences loads the user's latest preference submission.
type Preferences interface {
	LatestSubmission(ctx context.Context, userID string) (*submission.Submission, error)
}
