// Package filter holds the composable listing filters. Every filter is
// permissive: a listing whose value is missing or unparseable is kept.
package filter

import (
	"slices"

	"github.com/kailas-cloud/estatedash/internal/domain/listing"
)

// DefaultRadiusKm is the radius used when a distance filter is requested
// without an explicit value.
const DefaultRadiusKm = 2.0

// Predicate keeps a listing when it returns true.
type Predicate func(listing.Listing) bool

// Criteria is the set of user-selected filters. Nil pointers are inactive.
type Criteria struct {
	WithinKm          *float64 `json:"within_km,omitempty"`
	MinLeaseYears     *float64 `json:"min_lease_years,omitempty"`
	MaxServiceCharge  *float64 `json:"max_service_charge,omitempty"`
	FurnishTypes      []string `json:"furnish_types,omitempty"`
	MaxDeposit        *float64 `json:"max_deposit,omitempty"`
	MaxCommuteMinutes *float64 `json:"max_commute_minutes,omitempty"`
	ChainFree         bool     `json:"chain_free,omitempty"`
}

// Field names a numeric filter that a request may clear.
type Field string

// Clearable filters.
const (
	FieldWithinKm          Field = "within_km"
	FieldMinLeaseYears     Field = "min_lease_years"
	FieldMaxServiceCharge  Field = "max_service_charge"
	FieldMaxDeposit        Field = "max_deposit"
	FieldMaxCommuteMinutes Field = "max_commute_minutes"
)

// Without returns c with the named filters switched off.
func (c Criteria) Without(fields ...Field) Criteria {
	for _, f := range fields {
		switch f {
		case FieldWithinKm:
			c.WithinKm = nil
		case FieldMinLeaseYears:
			c.MinLeaseYears = nil
		case FieldMaxServiceCharge:
			c.MaxServiceCharge = nil
		case FieldMaxDeposit:
			c.MaxDeposit = nil
		case FieldMaxCommuteMinutes:
			c.MaxCommuteMinutes = nil
		}
	}
	return c
}

// Overlay returns c with every active field of o applied on top.
func (c Criteria) Overlay(o Criteria) Criteria {
	if o.WithinKm != nil {
		c.WithinKm = o.WithinKm
	}
	if o.MinLeaseYears != nil {
		c.MinLeaseYears = o.MinLeaseYears
	}
	if o.MaxServiceCharge != nil {
		c.MaxServiceCharge = o.MaxServiceCharge
	}
	if o.FurnishTypes != nil {
		c.FurnishTypes = o.FurnishTypes
	}
	if o.MaxDeposit != nil {
		c.MaxDeposit = o.MaxDeposit
	}
	if o.MaxCommuteMinutes != nil {
		c.MaxCommuteMinutes = o.MaxCommuteMinutes
	}
	if o.ChainFree {
		c.ChainFree = true
	}
	return c
}

// Predicates builds the active filters for mode. Lease, service charge and
// chain-free apply to sales; furnishing and deposit apply to rentals. An
// empty mode applies everything.
func (c Criteria) Predicates(mode listing.Mode) []Predicate {
	var preds []Predicate
	if c.WithinKm != nil {
		preds = append(preds, WithinKm(*c.WithinKm))
	}
	if c.MaxCommuteMinutes != nil {
		preds = append(preds, MaxCommuteMinutes(*c.MaxCommuteMinutes))
	}

	sales := mode != listing.ModeRental
	rental := mode != listing.ModeSales

	if sales {
		if c.MinLeaseYears != nil {
			preds = append(preds, MinLeaseYears(*c.MinLeaseYears))
		}
		if c.MaxServiceCharge != nil {
			preds = append(preds, MaxServiceCharge(*c.MaxServiceCharge))
		}
		if c.ChainFree {
			preds = append(preds, ChainFree())
		}
	}
	if rental {
		if len(c.FurnishTypes) > 0 {
			preds = append(preds, FurnishTypes(c.FurnishTypes...))
		}
		if c.MaxDeposit != nil {
			preds = append(preds, MaxDeposit(*c.MaxDeposit))
		}
	}
	return preds
}

// Apply filters listings for mode.
func (c Criteria) Apply(listings []listing.Listing, mode listing.Mode) []listing.Listing {
	return Apply(listings, c.Predicates(mode)...)
}

// Apply keeps listings that satisfy every predicate, in input order.
func Apply(listings []listing.Listing, preds ...Predicate) []listing.Listing {
	out := make([]listing.Listing, 0, len(listings))
	for _, l := range listings {
		if matchAll(l, preds) {
			out = append(out, l)
		}
	}
	return out
}

func matchAll(l listing.Listing, preds []Predicate) bool {
	for _, p := range preds {
		if !p(l) {
			return false
		}
	}
	return true
}

// WithinKm keeps listings no further than km from the preferred location.
func WithinKm(km float64) Predicate {
	return atMost(listing.Listing.DistanceKm, km)
}

// MinLeaseYears keeps listings with at least years left on the lease.
func MinLeaseYears(years float64) Predicate {
	return atLeast(listing.Listing.LeaseYears, years)
}

// MaxServiceCharge keeps listings whose annual service charge is at most limit.
func MaxServiceCharge(limit float64) Predicate {
	return atMost(listing.Listing.ServiceCharge, limit)
}

// MaxDeposit keeps listings whose deposit is at most limit.
func MaxDeposit(limit float64) Predicate {
	return atMost(listing.Listing.Deposit, limit)
}

// MaxCommuteMinutes keeps listings whose commute is at most minutes.
func MaxCommuteMinutes(minutes float64) Predicate {
	return atMost(func(l listing.Listing) (float64, bool) { return l.Journey().Minutes() }, minutes)
}

// FurnishTypes keeps listings whose furnishing is one of types.
func FurnishTypes(types ...string) Predicate {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(l listing.Listing) bool {
		ft := l.FurnishType()
		if ft == "" {
			return true
		}
		_, ok := allowed[ft]
		return ok
	}
}

// ChainFree keeps listings explicitly flagged chain free. Unlike the numeric
// filters it is opt-in: an unknown chain status is excluded.
func ChainFree() Predicate {
	return listing.Listing.ChainFree
}

// FurnishOptions lists the distinct furnishing labels present, sorted.
func FurnishOptions(listings []listing.Listing) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range listings {
		ft := l.FurnishType()
		if ft == "" {
			continue
		}
		if _, dup := seen[ft]; dup {
			continue
		}
		seen[ft] = struct{}{}
		out = append(out, ft)
	}
	slices.Sort(out)
	return out
}

func atMost(value func(listing.Listing) (float64, bool), limit float64) Predicate {
	return func(l listing.Listing) bool {
		v, ok := value(l)
		return !ok || v <= limit
	}
}

func atLeast(value func(listing.Listing) (float64, bool), limit float64) Predicate {
	return func(l listing.Listing) bool {
		v, ok := value(l)
		return !ok || v >= limit
	}
}
