package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/estatedash/internal/db"
	"github.com/kailas-cloud/estatedash/internal/domain"
)

// --- Get ---

func TestGet_Found(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, key string, paths ...string) ([]byte, error) {
		if key != "estatedash:properties:p1" {
			t.Errorf("unexpected key: %s", key)
		}
		if len(paths) != 1 || paths[0] != "$" {
			t.Errorf("unexpected paths: %v", paths)
		}
		return []byte(`[{"price":450000,"address":"1 High St"}]`), nil
	}

	rec, err := repo.Get(context.Background(), domain.CollectionProperties, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "p1" {
		t.Errorf("id should default to the key suffix, got %q", rec.ID())
	}
	if rec["price"] != 450000.0 {
		t.Errorf("price = %v", rec["price"])
	}
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	repo, _ := newTestRepo(t)
	rec, err := repo.Get(context.Background(), domain.CollectionProperties, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %v", rec)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpJSONGet, Err: context.DeadlineExceeded}
	}

	_, err := repo.Get(context.Background(), domain.CollectionProperties, "p1")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause must stay reachable")
	}
}

func TestGet_Corrupt(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte(`{not json`), nil
	}
	_, err := repo.Get(context.Background(), domain.CollectionProperties, "p1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// --- QueryByField ---

func TestQueryByField_Pages(t *testing.T) {
	repo, ms := newTestRepo(t)
	repo.WithPageSize(2)

	var offsets []int
	ms.searchListFn = func(
		_ context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error) {
		if index != "estatedash:shortlist:idx" {
			t.Errorf("unexpected index: %s", index)
		}
		if query != `@user_id:{user\-1}` {
			t.Errorf("unexpected query: %s", query)
		}
		if limit != 2 || len(fields) != 1 || fields[0] != "$" {
			t.Errorf("unexpected paging args: limit=%d fields=%v", limit, fields)
		}
		offsets = append(offsets, offset)

		var entries []db.SearchEntry
		for i := offset; i < offset+limit && i < 3; i++ {
			entries = append(entries, db.SearchEntry{
				Key:    fmt.Sprintf("estatedash:shortlist:s%d", i),
				Fields: map[string]string{"$": fmt.Sprintf(`{"user_id":"user-1","n":%d}`, i)},
			})
		}
		return &db.SearchResult{Total: 3, Entries: entries}, nil
	}

	recs, err := repo.QueryByField(context.Background(), domain.CollectionShortlist, "user_id", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 2 {
		t.Errorf("unexpected offsets: %v", offsets)
	}
	if recs[2].ID() != "s2" {
		t.Errorf("id should default to the key suffix, got %q", recs[2].ID())
	}
}

func TestQueryByField_SkipsUndecodable(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchListFn = func(
		_ context.Context, _, _ string, _, _ int, _ []string,
	) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			{Key: "estatedash:extraction:e1", Fields: map[string]string{"$": `{"id":"e1","property_id":"p1"}`}},
			{Key: "estatedash:extraction:e2", Fields: map[string]string{"$": `garbage`}},
			{Key: "estatedash:extraction:e3", Fields: map[string]string{}},
		}}, nil
	}

	recs, err := repo.QueryByField(context.Background(), domain.CollectionExtraction, "property_id", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "e1" {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestQueryByField_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)
	recs, err := repo.QueryByField(context.Background(), domain.CollectionUsers, "email", "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records, got %v", recs)
	}
}

func TestQueryByField_NotIndexed(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.QueryByField(context.Background(), domain.CollectionUsers, "password", "x")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestQueryByField_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchListFn = func(
		_ context.Context, _, _ string, _, _ int, _ []string,
	) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}
	_, err := repo.QueryByField(context.Background(), domain.CollectionUsers, "email", "a@b.co")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

// --- Insert ---

func TestInsert(t *testing.T) {
	repo, ms := newTestRepo(t)
	var stored map[string]any
	ms.jsonSetNXFn = func(_ context.Context, key, path string, data []byte) (bool, error) {
		if key != "estatedash:submissions:gen-1" || path != "$" {
			t.Errorf("unexpected key/path: %s %s", key, path)
		}
		if err := json.Unmarshal(data, &stored); err != nil {
			t.Fatalf("stored invalid JSON: %v", err)
		}
		return true, nil
	}

	in := domain.Record{"user_id": "u1"}
	id, err := repo.Insert(context.Background(), domain.CollectionSubmissions, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "gen-1" {
		t.Errorf("id = %q", id)
	}
	if stored["id"] != "gen-1" || stored["user_id"] != "u1" {
		t.Errorf("unexpected document: %v", stored)
	}
	if stored["created_at"] != "2024-05-01T12:00:00Z" {
		t.Errorf("created_at = %v", stored["created_at"])
	}
	if in.Has("id") {
		t.Error("input record must not be mutated")
	}
}

func TestInsert_KeepsCreatedAt(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetNXFn = func(_ context.Context, _, _ string, data []byte) (bool, error) {
		var doc map[string]any
		_ = json.Unmarshal(data, &doc)
		if doc["created_at"] != "2020-01-01T00:00:00Z" {
			t.Errorf("created_at overwritten: %v", doc["created_at"])
		}
		return true, nil
	}
	if _, err := repo.Insert(context.Background(), domain.CollectionUsers,
		domain.Record{"created_at": "2020-01-01T00:00:00Z"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInsert_Collision(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetNXFn = func(_ context.Context, _, _ string, _ []byte) (bool, error) { return false, nil }

	_, err := repo.Insert(context.Background(), domain.CollectionUsers, domain.Record{})
	if !errors.Is(err, db.ErrKeyExists) || !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrKeyExists store error, got %v", err)
	}
}

// --- EnsureIndexes ---

func TestEnsureIndexes(t *testing.T) {
	repo, ms := newTestRepo(t)
	created := map[string]string{}
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		if def.StorageType != db.StorageJSON {
			t.Errorf("index %s must be on JSON", def.Name)
		}
		created[def.Name] = def.Fields[0].Alias
		if def.Name == "estatedash:users:idx" {
			return db.ErrIndexExists
		}
		return nil
	}

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != len(domain.Collections()) {
		t.Fatalf("expected one index per collection, got %v", created)
	}
	if created["estatedash:extraction:idx"] != "property_id" {
		t.Errorf("extraction index field = %q", created["estatedash:extraction:idx"])
	}
}

func TestEnsureIndexes_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return &db.Error{Op: db.OpCreateIndex, Err: errors.New("boom")}
	}
	if err := repo.EnsureIndexes(context.Background()); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}
