package assistant

import (
	"context"

	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/usecase/session"
)

// ListingSource resolves the listing a conversation is about.
type ListingSource interface {
	Listing(ctx context.Context, sess *session.Session, propertyID string) (listing.Listing, error)
}
