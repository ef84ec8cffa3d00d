// Package order holds the stable listing sort orders.
package order

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/estatedash/internal/domain/listing"
)

// Order identifies a sort order.
type Order string

// Supported orders.
const (
	CriteriaMatch Order = "criteria_match"
	PriceAsc      Order = "price_asc"
	PriceDesc     Order = "price_desc"
	BedroomsDesc  Order = "bedrooms_desc"
	CommuteAsc    Order = "commute_asc"
	DistanceAsc   Order = "distance_asc"
	Newest        Order = "newest"
)

// Default is the order used when none is requested.
const Default = CriteriaMatch

var all = []Order{CriteriaMatch, PriceAsc, PriceDesc, BedroomsDesc, CommuteAsc, DistanceAsc, Newest}

// labels are the dashboard captions, which Parse also accepts.
var labels = map[Order][2]string{ // sales, rental
	CriteriaMatch: {"Criteria Match: Most to Least", "Criteria Match: Most to Least"},
	PriceAsc:      {"Price: Low to High", "Rent: Low to High"},
	PriceDesc:     {"Price: High to Low", "Rent: High to Low"},
	BedroomsDesc:  {"Bedrooms: Most to Fewest", "Bedrooms: Most to Fewest"},
	CommuteAsc:    {"Commute time to work: Shortest to Longest", "Commute time to work: Shortest to Longest"},
	DistanceAsc:   {"Closest to the preferred location", "Closest to the preferred location"},
	Newest:        {"Newest First", "Newest First"},
}

// Parse resolves an order key or caption (case-insensitive). "" yields Default.
func Parse(s string) (Order, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, nil
	}
	for _, o := range all {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
		l := labels[o]
		if strings.EqualFold(s, l[0]) || strings.EqualFold(s, l[1]) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Label returns the caption of o for mode.
func (o Order) Label(mode listing.Mode) string {
	l, ok := labels[o]
	if !ok {
		return string(o)
	}
	if mode == listing.ModeRental {
		return l[1]
	}
	return l[0]
}

// Option is a selectable order with its caption.
type Option struct {
	Key   Order  `json:"key"`
	Label string `json:"label"`
}

// Options lists the orders offered for mode.
func Options(mode listing.Mode) []Option {
	out := make([]Option, 0, len(all))
	for _, o := range all {
		out = append(out, Option{Key: o, Label: o.Label(mode)})
	}
	return out
}

// Sort returns a stably sorted copy of listings. Price orders use the
// monthly rent in rental mode. A missing price, bedroom count or date ranks
// below every present value, so descending order is the exact reverse of
// ascending. A missing commute or distance ranks above every present value.
func Sort(listings []listing.Listing, o Order, mode listing.Mode) []listing.Listing {
	out := slices.Clone(listings)
	slices.SortStableFunc(out, compareFor(o, mode))
	return out
}

func compareFor(o Order, mode listing.Mode) func(a, b listing.Listing) int {
	price := listing.Listing.Price
	if mode == listing.ModeRental {
		price = listing.Listing.MonthlyRent
	}

	switch o {
	case PriceAsc:
		return byNumber(price, false, missingLow)
	case PriceDesc:
		return byNumber(price, true, missingLow)
	case BedroomsDesc:
		return byNumber(listing.Listing.Bedrooms, true, missingLow)
	case CommuteAsc:
		return byNumber(func(l listing.Listing) (float64, bool) { return l.Journey().Minutes() }, false, missingHigh)
	case DistanceAsc:
		return byNumber(listing.Listing.DistanceKm, false, missingHigh)
	case Newest:
		return byNumber(func(l listing.Listing) (float64, bool) {
			t, ok := l.CreatedAt()
			return float64(t.UnixNano()), ok
		}, true, missingLow)
	default:
		return func(a, b listing.Listing) int {
			return cmp.Compare(b.CriteriaCount(), a.CriteriaCount())
		}
	}
}

// missing places a listing without the sort key relative to present values.
type missing int

const (
	missingLow missing = iota
	missingHigh
)

func byNumber(
	key func(listing.Listing) (float64, bool), desc bool, m missing,
) func(a, b listing.Listing) int {
	return func(a, b listing.Listing) int {
		c := compareKeys(a, b, key, m)
		if desc {
			return -c
		}
		return c
	}
}

func compareKeys(a, b listing.Listing, key func(listing.Listing) (float64, bool), m missing) int {
	av, aok := key(a)
	bv, bok := key(b)
	switch {
	case aok && bok:
		return cmp.Compare(av, bv)
	case !aok && !bok:
		return 0
	case !aok:
		if m == missingLow {
			return -1
		}
		return 1
	default:
		if m == missingLow {
			return 1
		}
		return -1
	}
}
