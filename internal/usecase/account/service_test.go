package account

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	records  map[domain.Collection][]domain.Record
	queryErr error
	inserted []domain.Record
	insertFn func(record domain.Record) (string, error)

	lastField, lastValue string
}

func (m *mockRepo) QueryByField(
	_ context.Context, collection domain.Collection, field, value string,
) ([]domain.Record, error) {
	m.lastField, m.lastValue = field, value
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []domain.Record
	for _, r := range m.records[collection] {
		if r.String(field) == value {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRepo) Insert(_ context.Context, _ domain.Collection, record domain.Record) (string, error) {
	m.inserted = append(m.inserted, record)
	if m.insertFn != nil {
		return m.insertFn(record)
	}
	return "new-id", nil
}

func usersRepo() *mockRepo {
	return &mockRepo{records: map[domain.Collection][]domain.Record{
		domain.CollectionUsers: {
			{"id": "doc-1", "user_id": "u1", "email": "ann@example.com", "first_name": "Ann", "password": "secret"},
		},
	}}
}

// --- Login ---

func TestLogin(t *testing.T) {
	repo := usersRepo()
	svc := New(repo, nil)

	u, err := svc.Login(context.Background(), "  Ann@Example.com ", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "u1" || u.FirstName != "Ann" {
		t.Errorf("unexpected user: %+v", u)
	}
	if repo.lastField != "email" || repo.lastValue != "ann@example.com" {
		t.Errorf("queried %s=%s", repo.lastField, repo.lastValue)
	}
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "bob@example.com", "secret", domain.ErrUserNotFound},
		{"empty email", "", "secret", domain.ErrUserNotFound},
		{"wrong password", "ann@example.com", "nope", domain.ErrInvalidCredentials},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(usersRepo(), nil).Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLogin_StoreError(t *testing.T) {
	repo := &mockRepo{queryErr: domain.NewStoreError("query", errors.New("down"))}
	_, err := New(repo, nil).Login(context.Background(), "a@b.co", "x")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

// --- Register ---

func TestRegister(t *testing.T) {
	repo := usersRepo()
	u, err := New(repo, nil).Register(context.Background(), "New@Example.com", "Nia", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "new-id" || u.Email != "new@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].String("email") != "new@example.com" {
		t.Errorf("unexpected insert: %v", repo.inserted)
	}
}

func TestRegister_Rejects(t *testing.T) {
	tests := []struct {
		name, email, first, password string
	}{
		{"taken", "ann@example.com", "Ann", "pw"},
		{"bad email", "not-an-email", "Ann", "pw"},
		{"no name", "x@example.com", "", "pw"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := usersRepo()
			_, err := New(repo, nil).Register(context.Background(), tc.email, tc.first, tc.password)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(repo.inserted) != 0 {
				t.Error("nothing should be inserted")
			}
		})
	}
}

func TestRegister_InsertError(t *testing.T) {
	repo := usersRepo()
	repo.insertFn = func(domain.Record) (string, error) {
		return "", domain.NewStoreError("insert", errors.New("down"))
	}
	_, err := New(repo, nil).Register(context.Background(), "x@example.com", "X", "pw")
	if !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

// --- LatestSubmission ---

func TestLatestSubmission(t *testing.T) {
	repo := &mockRepo{records: map[domain.Collection][]domain.Record{
		domain.CollectionSubmissions: {
			{"id": "s1", "user_id": "u1", "created_at": "2024-01-01T00:00:00Z",
				"content": map[string]any{"max_price": 500.0}},
			{"id": "s2", "user_id": "u1", "created_at": "2024-03-01T00:00:00Z",
				"content": map[string]any{"max_price": 650.0, "min_lease_year": 90.0}},
			{"id": "s3", "user_id": "u1", "created_at": "2024-06-01T00:00:00Z"},
		},
	}}

	sub, err := New(repo, nil).LatestSubmission(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub == nil || sub.ID != "s2" {
		t.Fatalf("expected s2, got %+v", sub)
	}
	if sub.Content.MinLeaseYears == nil || *sub.Content.MinLeaseYears != 90 {
		t.Errorf("content not parsed: %+v", sub.Content)
	}
}

func TestLatestSubmission_None(t *testing.T) {
	sub, err := New(&mockRepo{}, nil).LatestSubmission(context.Background(), "u1")
	if err != nil || sub != nil {
		t.Fatalf("expected nil, nil; got %v, %v", sub, err)
	}
}
