package listing

import (
	"strings"

	"github.com/kailas-cloud/estatedash/internal/domain/property"
)

// Mode partitions listings by transaction type.
type Mode string

const (
	// ModeSales is a listing for sale.
	ModeSales Mode = "sales"
	// ModeRental is a listing to let.
	ModeRental Mode = "rental"
)

// IsValid checks if the mode is supported.
func (m Mode) IsValid() bool {
	return m == ModeSales || m == ModeRental
}

// ParseMode accepts "sales"/"rental" in any case; "" yields false.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.IsValid()
}

// DetermineMode infers the predominant mode: rental when at least one listing
// is a rental and rentals are not outnumbered by sales.
func DetermineMode(listings []Listing) Mode {
	var rental, sales int
	for _, l := range listings {
		if l.fields.Has(property.FieldMonthlyRent) {
			rental++
		}
		if l.fields.Has(property.FieldPrice) {
			sales++
		}
	}
	if rental > 0 && rental >= sales {
		return ModeRental
	}
	return ModeSales
}

// HasMode reports whether any listing belongs to mode.
func HasMode(listings []Listing, mode Mode) bool {
	for _, l := range listings {
		if inMode(l, mode) {
			return true
		}
	}
	return false
}

// ByMode keeps listings of mode in input order.
func ByMode(listings []Listing, mode Mode) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if inMode(l, mode) {
			out = append(out, l)
		}
	}
	return out
}

func inMode(l Listing, mode Mode) bool {
	if mode == ModeRental {
		return l.fields.Has(property.FieldMonthlyRent)
	}
	return l.fields.Has(property.FieldPrice)
}
