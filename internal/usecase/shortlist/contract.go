package shortlist

import (
	"context"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/usecase/fetch"
)

// Querier finds shortlist documents by user id.
type Querier interface {
	QueryByField(ctx context.Context, collection domain.Collection, field, value string) ([]domain.Record, error)
}

// Fetcher resolves properties and their latest extractions in parallel.
type Fetcher interface {
	Both(ctx context.Context, ids []string) fetch.Result
	One(ctx context.Context, id string) (prop, results domain.Record, err error)
}
