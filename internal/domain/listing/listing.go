// Package listing builds the enriched, UI-ready view of one shortlisted property.
package listing

import (
	"time"

	"github.com/kailas-cloud/estatedash/internal/domain"
	"github.com/kailas-cloud/estatedash/internal/domain/geo"
	"github.com/kailas-cloud/estatedash/internal/domain/property"
)

// Field names read by the listing accessors beyond the property schema.
const (
	FieldPropertyID          = "property_id"
	FieldJourney             = "journey"
	FieldDistance            = "distance_to_preferred_location"
	FieldDescriptionAnalysis = "description_analysis"
	FieldMatchedCriteria     = "matched_criteria"
	FieldQueryMatched        = "query_matched"
	FieldMatchOutput         = "match_output"
	FieldLifestyleCriteria   = "matched_lifestyle_criteria"
	FieldLifestyleMatched    = "lifestyle_criteria_matched"
	FieldNeighborhoodInfo    = "neighborhood_info"
	FieldDraft               = "draft"
)

// Listing is an enriched listing: the merged shortlist entry, property and
// extraction fields with the journey and matched criteria normalized once.
type Listing struct {
	fields   domain.Record
	journey  Journey
	criteria []string
}

// New normalizes merged fields into a Listing. The journey is rewritten to
// {"duration": n}, query_matched is folded into matched_criteria and the
// lifestyle criteria move to their canonical key.
func New(fields domain.Record) Listing {
	f := fields.Clone()

	journey := NormalizeJourney(f[FieldJourney])
	f[FieldJourney] = journey.Record()

	if merged := mergeCriteria(f[FieldQueryMatched], f[FieldMatchedCriteria]); merged != nil {
		f[FieldMatchedCriteria] = merged
	}
	delete(f, FieldQueryMatched)

	if v, ok := f[FieldLifestyleMatched]; ok {
		if !f.Has(FieldLifestyleCriteria) {
			f[FieldLifestyleCriteria] = v
		}
		delete(f, FieldLifestyleMatched)
	}

	return Listing{
		fields:   f,
		journey:  journey,
		criteria: NormalizeCriteria(f),
	}
}

// Fields returns the merged field map. Callers must not mutate it.
func (l Listing) Fields() domain.Record { return l.fields }

// PropertyID returns the property id.
func (l Listing) PropertyID() string {
	if id := l.fields.String(FieldPropertyID); id != "" {
		return id
	}
	return l.fields.ID()
}

// Address returns the display address or "".
func (l Listing) Address() string { return l.fields.String(property.FieldAddress) }

// Postcode returns the postcode or "".
func (l Listing) Postcode() string { return l.fields.String(property.FieldPostcode) }

// Price returns the sale price.
func (l Listing) Price() (float64, bool) { return l.fields.Number(property.FieldPrice) }

// MonthlyRent returns the monthly rent.
func (l Listing) MonthlyRent() (float64, bool) { return l.fields.Number(property.FieldMonthlyRent) }

// Bedrooms returns the bedroom count.
func (l Listing) Bedrooms() (float64, bool) { return l.fields.Number(property.FieldBedrooms) }

// Bathrooms returns the bathroom count.
func (l Listing) Bathrooms() (float64, bool) { return l.fields.Number(property.FieldBathrooms) }

// Journey returns the normalized commute.
func (l Listing) Journey() Journey { return l.journey }

// Criteria returns the canonical, sorted set of matched criterion tags.
func (l Listing) Criteria() []string { return l.criteria }

// CriteriaCount is the number of matched criterion tags.
func (l Listing) CriteriaCount() int { return len(l.criteria) }

// DistanceKm returns the distance to the user's preferred location.
func (l Listing) DistanceKm() (float64, bool) { return l.fields.Number(FieldDistance) }

// ServiceCharge prefers the description analysis over the listed value.
func (l Listing) ServiceCharge() (float64, bool) {
	return ToNumberFallback(l.describe("service_charge"), l.fields[property.FieldServiceCharge])
}

// LeaseYears prefers the description analysis over the listed lease length.
func (l Listing) LeaseYears() (float64, bool) {
	return ToNumberFallback(l.describe("years_left_on_lease"), l.fields[property.FieldLengthOfLease])
}

// Deposit prefers the listed value over the description analysis.
func (l Listing) Deposit() (float64, bool) {
	return ToNumberFallback(l.fields[property.FieldDeposit], l.describe("deposit"))
}

// MinTenancyMonths prefers the listed value over the description analysis.
func (l Listing) MinTenancyMonths() (float64, bool) {
	return ToNumberFallback(l.fields[property.FieldMinTenancyMonths], l.describe("minimum_tenancy_months"))
}

// FurnishType returns the furnishing label or "".
func (l Listing) FurnishType() string { return l.fields.String(property.FieldFurnishType) }

// ChainFree reports an explicit chain-free flag from the description analysis.
func (l Listing) ChainFree() bool {
	b, ok := l.describe("is_chain_free").(bool)
	return ok && b
}

// CreatedAt returns when the property was listed.
func (l Listing) CreatedAt() (time.Time, bool) { return l.fields.Time(domain.FieldCreatedAt) }

// Point returns the property coordinates when both are present and valid.
func (l Listing) Point() (geo.Point, bool) {
	lat, latOK := l.fields.Number(property.FieldLatitude)
	lng, lngOK := l.fields.Number(property.FieldLongitude)
	if !latOK || !lngOK || !geo.ValidateCoordinates(lat, lng) {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lng: lng}, true
}

// Images returns the base64 image payloads.
func (l Listing) Images() []string { return property.ImagePayloads(l.fields) }

// Mode classifies the listing: rental if it carries a monthly rent, else
// sales if it carries a price, else "".
func (l Listing) Mode() Mode {
	switch {
	case l.fields.Has(property.FieldMonthlyRent):
		return ModeRental
	case l.fields.Has(property.FieldPrice):
		return ModeSales
	}
	return ""
}

// WithDistance returns a copy with the preferred-location distance set.
func (l Listing) WithDistance(km float64) Listing {
	l.fields = l.fields.Clone()
	l.fields[FieldDistance] = km
	return l
}

func (l Listing) describe(key string) any {
	desc := l.fields.Map(FieldDescriptionAnalysis)
	if desc == nil {
		return nil
	}
	v := desc[key]
	if s, ok := v.(string); ok && (s == "" || s == "None") {
		return nil
	}
	return v
}

// ToNumberFallback returns the first of values that parses as a number.
func ToNumberFallback(values ...any) (float64, bool) {
	for _, v := range values {
		if n, ok := domain.ToNumber(v); ok {
			return n, true
		}
	}
	return 0, false
}

// mergeCriteria folds query-matched indicators into matched criteria. Two
// mappings merge key-wise (matched wins); otherwise both are flattened into
// one list. A lone source is kept as is.
func mergeCriteria(queryMatched, matched any) any {
	switch {
	case queryMatched == nil:
		return matched
	case matched == nil:
		return queryMatched
	}
	qm, qok := asMap(queryMatched)
	mm, mok := asMap(matched)
	if qok && mok {
		out := make(map[string]any, len(qm)+len(mm))
		for k, v := range qm {
			out[k] = v
		}
		for k, v := range mm {
			out[k] = v
		}
		return out
	}
	return mergeLists(asList(queryMatched), asList(matched))
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case domain.Record:
		return t, true
	}
	return nil, false
}

// asList wraps a mapping as a one-element list so list flattening keeps it.
func asList(v any) any {
	if m, ok := asMap(v); ok {
		return []any{m}
	}
	return v
}

func mergeLists(values ...any) []any {
	var out []any
	seen := false
	for _, v := range values {
		switch t := v.(type) {
		case []any:
			out = append(out, t...)
			seen = true
		case []string:
			for _, s := range t {
				out = append(out, s)
			}
			seen = true
		}
	}
	if !seen {
		return nil
	}
	if out == nil {
		out = []any{}
	}
	return out
}
