package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/db"
	"github.com/kailas-cloud/estatedash/internal/domain"
)

const defaultPageSize = 100

// queryable lists the TAG-indexed fields of each collection.
var queryable = map[domain.Collection][]string{
	domain.CollectionUsers:       {"email"},
	domain.CollectionSubmissions: {"user_id"},
	domain.CollectionProperties:  {"id"},
	domain.CollectionShortlist:   {"user_id"},
	domain.CollectionExtraction:  {"property_id"},
}

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo is the document store client: point lookups, equality queries and
// inserts over collection-scoped JSON documents.
type Repo struct {
	store    store
	prefix   string
	pageSize int
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a document repository. An empty prefix uses domain.DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return &Repo{
		store:    s,
		prefix:   prefix,
		pageSize: defaultPageSize,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithLogger sets the logger used for skipped documents.
func (r *Repo) WithLogger(l *zap.Logger) *Repo {
	r.logger = l
	return r
}

// WithPageSize sets the FT.SEARCH page size used by QueryByField.
func (r *Repo) WithPageSize(n int) *Repo {
	if n > 0 {
		r.pageSize = n
	}
	return r
}

// WithClock overrides the clock used for created_at.
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// WithIDGenerator overrides server-side id generation.
func (r *Repo) WithIDGenerator(fn func() string) *Repo {
	r.newID = fn
	return r
}

// Get returns the document with id, or nil when it does not exist.
func (r *Repo) Get(ctx context.Context, collection domain.Collection, id string) (domain.Record, error) {
	key := collection.Key(r.prefix, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, domain.NewStoreError("get "+key, err)
	}

	// JSON.GET with a "$" path wraps the document in an array.
	var docs []domain.Record
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, domain.NewValidationError("document", "is not valid JSON"))
	}
	if len(docs) == 0 || docs[0] == nil {
		return nil, nil
	}

	doc := docs[0]
	if doc.ID() == "" {
		doc[domain.FieldID] = id
	}
	return doc, nil
}

// QueryByField returns every document in collection whose field equals value.
// Results carry no ordering guarantee.
func (r *Repo) QueryByField(
	ctx context.Context, collection domain.Collection, field, value string,
) ([]domain.Record, error) {
	if !isQueryable(collection, field) {
		return nil, fmt.Errorf("query %s.%s: %w", collection, field,
			domain.NewValidationError(field, "is not indexed"))
	}

	index := collection.IndexName(r.prefix)
	query := db.TagQuery(field, value)

	var out []domain.Record
	for offset := 0; ; offset += r.pageSize {
		res, err := r.store.SearchList(ctx, index, query, offset, r.pageSize, []string{"$"})
		if err != nil {
			return nil, domain.NewStoreError("query "+index, err)
		}
		if res == nil || len(res.Entries) == 0 {
			break
		}

		for _, entry := range res.Entries {
			doc, ok := r.decodeEntry(collection, entry)
			if ok {
				out = append(out, doc)
			}
		}

		if offset+len(res.Entries) >= res.Total {
			break
		}
	}
	return out, nil
}

// Insert stores record under a new server-generated id and returns the id.
// created_at is stamped when absent.
func (r *Repo) Insert(ctx context.Context, collection domain.Collection, record domain.Record) (string, error) {
	id := r.newID()
	doc := record.Clone()
	doc[domain.FieldID] = id
	if !doc.Has(domain.FieldCreatedAt) {
		doc[domain.FieldCreatedAt] = r.now().UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", collection, err)
	}

	key := collection.Key(r.prefix, id)
	created, err := r.store.JSONSetNX(ctx, key, "$", data)
	if err != nil {
		return "", domain.NewStoreError("insert "+key, err)
	}
	if !created {
		return "", domain.NewStoreError("insert "+key, db.ErrKeyExists)
	}
	return id, nil
}

// EnsureIndexes creates the search index of every collection. Existing
// indexes are left untouched.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, c := range domain.Collections() {
		b := db.NewIndex(c.IndexName(r.prefix)).Prefix(c.KeyPrefix(r.prefix))
		for _, field := range queryable[c] {
			b.Tag(field)
		}
		def, err := b.Build()
		if err != nil {
			return fmt.Errorf("build index %s: %w", c, err)
		}
		if err := r.store.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return domain.NewStoreError("create index "+def.Name, err)
		}
		r.logger.Info("search index created", zap.String("index", def.Name))
	}
	return nil
}

func (r *Repo) decodeEntry(collection domain.Collection, entry db.SearchEntry) (domain.Record, bool) {
	raw := entry.Fields["$"]
	if raw == "" {
		r.logger.Warn("skipping document without body", zap.String("key", entry.Key))
		return nil, false
	}
	var doc domain.Record
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
		r.logger.Warn("skipping undecodable document", zap.String("key", entry.Key), zap.Error(err))
		return nil, false
	}
	if doc.ID() == "" {
		doc[domain.FieldID] = strings.TrimPrefix(entry.Key, collection.KeyPrefix(r.prefix))
	}
	return doc, true
}

func isQueryable(collection domain.Collection, field string) bool {
	for _, f := range queryable[collection] {
		if f == field {
			return true
		}
	}
	return false
}
