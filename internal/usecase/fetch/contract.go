package fetch

import (
	"context"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// RecordReader resolves documents by id (usually the cached reader).
type RecordReader interface {
	Get(ctx context.Context, collection domain.Collection, id string) (domain.Record, error)
}

// RecordQuerier finds documents by an indexed field.
type RecordQuerier interface {
	QueryByField(ctx context.Context, collection domain.Collection, field, value string) ([]domain.Record, error)
}
