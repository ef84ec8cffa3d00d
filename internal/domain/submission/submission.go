// Package submission models a user's preference intake.
package submission

import (
	"strings"
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/geo"
)

// Stored field names.
const (
	FieldUserID   = "user_id"
	FieldEmail    = "email"
	FieldContent  = "content"
	FieldIsActive = "is_active"
)

// DefaultLocationLabel is shown when the user gave no preferred location.
const DefaultLocationLabel = "your preferred location"

// Content is the preference payload. Unknown keys stay available in Raw.
type Content struct {
	MaxPrice          *float64   `json:"max_price,omitempty"`
	NumBedrooms       *float64   `json:"num_bedrooms,omitempty"`
	NumBathrooms      *float64   `json:"num_bathrooms,omitempty"`
	PropertyType      []string   `json:"property_type,omitempty"`
	PreferredLocation []string   `json:"preferred_location,omitempty"`
	PreferredPoint    *geo.Point `json:"preferred_point,omitempty"`
	WorkplaceLocation string     `json:"workplace_location,omitempty"`
	MaxCommuteMinutes *float64   `json:"max_commute_minutes,omitempty"`
	MinLeaseYears     *float64   `json:"min_lease_year,omitempty"`
	MaxServiceCharge  *float64   `json:"max_service_charge,omitempty"`
	MaxDeposit        *float64   `json:"max_deposit,omitempty"`

	Raw domain.Record `json:"-"`
}

// Submission is one preference intake.
type Submission struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Content   Content   `json:"content"`
	IsActive  *bool     `json:"is_active,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRecord parses a stored submission.
func FromRecord(r domain.Record) (Submission, error) {
	userID := r.String(FieldUserID)
	if userID == "" {
		return Submission{}, domain.NewValidationError(FieldUserID, "is required")
	}
	raw := r.Map(FieldContent)
	if raw == nil {
		return Submission{}, domain.NewValidationError(FieldContent, "must be an object")
	}

	var active *bool
	if b, ok := r[FieldIsActive].(bool); ok {
		active = &b
	}
	createdAt, _ := r.Time(domain.FieldCreatedAt)

	return Submission{
		ID:        r.ID(),
		UserID:    userID,
		Email:     r.String(FieldEmail),
		Content:   ParseContent(raw),
		IsActive:  active,
		CreatedAt: createdAt,
	}, nil
}

// ParseContent reads the known preference keys from raw.
func ParseContent(raw domain.Record) Content {
	c := Content{
		MaxPrice:          number(raw, "max_price"),
		NumBedrooms:       number(raw, "num_bedrooms"),
		NumBathrooms:      number(raw, "num_bathrooms"),
		PropertyType:      stringList(raw["property_type"]),
		PreferredLocation: stringList(raw["preferred_location"]),
		WorkplaceLocation: raw.String("workplace_location"),
		MaxCommuteMinutes: number(raw, "max_commute_minutes"),
		MinLeaseYears:     number(raw, "min_lease_year"),
		MaxServiceCharge:  number(raw, "max_service_charge"),
		MaxDeposit:        number(raw, "max_deposit"),
		Raw:               raw,
	}

	lat, latOK := raw.Number("preferred_latitude")
	lng, lngOK := raw.Number("preferred_longitude")
	if latOK && lngOK && geo.ValidateCoordinates(lat, lng) {
		c.PreferredPoint = &geo.Point{Lat: lat, Lng: lng}
	}
	return c
}

// Record renders c for storage.
func (c Content) Record() domain.Record {
	out := c.Raw.Clone()
	setNumber(out, "max_price", c.MaxPrice)
	setNumber(out, "num_bedrooms", c.NumBedrooms)
	setNumber(out, "num_bathrooms", c.NumBathrooms)
	setNumber(out, "max_commute_minutes", c.MaxCommuteMinutes)
	setNumber(out, "min_lease_year", c.MinLeaseYears)
	setNumber(out, "max_service_charge", c.MaxServiceCharge)
	setNumber(out, "max_deposit", c.MaxDeposit)
	if len(c.PropertyType) > 0 {
		out["property_type"] = c.PropertyType
	}
	if len(c.PreferredLocation) > 0 {
		out["preferred_location"] = c.PreferredLocation
	}
	if c.WorkplaceLocation != "" {
		out["workplace_location"] = c.WorkplaceLocation
	}
	if c.PreferredPoint != nil {
		out["preferred_latitude"] = c.PreferredPoint.Lat
		out["preferred_longitude"] = c.PreferredPoint.Lng
	}
	return out
}

// PreferredLocationLabel is the short name of the first preferred location.
func (c Content) PreferredLocationLabel() string {
	if len(c.PreferredLocation) == 0 {
		return DefaultLocationLabel
	}
	label, _, _ := strings.Cut(c.PreferredLocation[0], ",")
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultLocationLabel
	}
	return label
}

// Latest returns the most recently created submission. Later entries win ties,
// matching "last submitted" semantics.
func Latest(items []Submission) (Submission, bool) {
	if len(items) == 0 {
		return Submission{}, false
	}
	best := items[0]
	for _, s := range items[1:] {
		if !s.CreatedAt.Before(best.CreatedAt) {
			best = s
		}
	}
	return best, true
}

func number(r domain.Record, key string) *float64 {
	n, ok := r.Number(key)
	if !ok {
		return nil
	}
	return &n
}

func setNumber(r domain.Record, key string, v *float64) {
	if v != nil {
		r[key] = *v
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
