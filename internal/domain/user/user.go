// Package user models a dashboard account.
package user

import (
	"crypto/subtle"
	"net/mail"
	"strings"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
)

// Stored field names.
const (
	FieldUserID    = "user_id"
	FieldEmail     = "email"
	FieldFirstName = "first_name"
	FieldPassword  = "password"
)

// User is a registered account.
type User struct {
	ID        string
	Email     string
	FirstName string
	Password  string
	CreatedAt time.Time
}

// New validates a registration.
func New(email, firstName, password string) (User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, domain.NewValidationError(FieldEmail, "is not a valid address")
	}
	if strings.TrimSpace(firstName) == "" {
		return User{}, domain.NewValidationError(FieldFirstName, "is required")
	}
	if password == "" {
		return User{}, domain.NewValidationError(FieldPassword, "is required")
	}
	return User{Email: email, FirstName: strings.TrimSpace(firstName), Password: password}, nil
}

// FromRecord parses a stored user. An explicit user_id field takes
// precedence over the document id.
func FromRecord(r domain.Record) (User, error) {
	email := r.String(FieldEmail)
	if email == "" {
		return User{}, domain.NewValidationError(FieldEmail, "is required")
	}
	id := r.String(FieldUserID)
	if id == "" {
		id = r.ID()
	}
	createdAt, _ := r.Time(domain.FieldCreatedAt)
	return User{
		ID:        id,
		Email:     email,
		FirstName: r.String(FieldFirstName),
		Password:  r.String(FieldPassword),
		CreatedAt: createdAt,
	}, nil
}

// Record renders u for storage.
func (u User) Record() domain.Record {
	return domain.Record{
		FieldEmail:     u.Email,
		FieldFirstName: u.FirstName,
		FieldPassword:  u.Password,
	}
}

// CheckPassword compares in constant time.
func (u User) CheckPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1
}

// NormalizeEmail trims and lower-cases an address for lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
