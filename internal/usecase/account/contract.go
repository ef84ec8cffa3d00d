package account

import (
	"context"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// Repository is the document store contract for accounts and submissions.
type Repository interface {
	QueryByField(ctx context.Context, collection domain.Collection, field, value string) ([]domain.Record, error)
	Insert(ctx context.Context, collection domain.Collection, record domain.Record) (string, error)
}
